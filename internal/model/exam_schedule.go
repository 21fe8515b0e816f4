package model

import "time"

type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleOngoing   ScheduleStatus = "ongoing"
	ScheduleFinished  ScheduleStatus = "finished"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// ExamSchedule binds one exam subject to a class and a time window.
// Nil override fields inherit from the exam / subject defaults;
// PassingScore is always schedule-level and is the single source of
// truth for pass/fail.
// swagger:model ExamSchedule
type ExamSchedule struct {
	BaseModel
	SchoolID      uint           `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	ExamID        uint           `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	ExamSubjectID uint           `gorm:"index;type:bigint unsigned;not null" json:"examSubjectId"`
	ClassID       uint           `gorm:"index;type:bigint unsigned;not null" json:"classId"`
	StartAt       time.Time      `json:"startAt"`
	EndAt         time.Time      `json:"endAt"`
	Status        ScheduleStatus `gorm:"size:20;default:'scheduled'" json:"status"`

	// Per-schedule overrides; nil means inherit.
	DurationMinutes    *int  `json:"durationMinutes,omitempty"`
	MaxAttempts        *int  `json:"maxAttempts,omitempty"`
	RandomizeQuestions *bool `json:"randomizeQuestions,omitempty"`
	RandomizeAnswers   *bool `json:"randomizeAnswers,omitempty"`

	PassingScore  int  `gorm:"default:60" json:"passingScore"` // percentage threshold
	ShowResult    bool `gorm:"default:true" json:"showResult"`
	ShowAnswerKey bool `gorm:"default:false" json:"showAnswerKey"`
}

func (ExamSchedule) TableName() string {
	return "exam_schedules"
}

// AcceptsAttempts reports whether new attempts may start at t.
func (s *ExamSchedule) AcceptsAttempts(t time.Time) bool {
	if s.Status != ScheduleScheduled && s.Status != ScheduleOngoing {
		return false
	}
	return !t.Before(s.StartAt) && !t.After(s.EndAt)
}
