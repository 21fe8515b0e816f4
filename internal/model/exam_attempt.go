package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptStarted    AttemptStatus = "started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
	AttemptTimeout    AttemptStatus = "timeout"
)

// IsOpen reports whether the attempt still accepts answer writes.
// "started" and "in_progress" are both open; the engine itself only
// ever writes "in_progress".
func (s AttemptStatus) IsOpen() bool {
	return s == AttemptStarted || s == AttemptInProgress
}

func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptAbandoned || s == AttemptTimeout
}

// ExamAttempt is one student's run at a schedule. QuestionOrder and
// AnswerOrder are written exactly once, at start, and never recomputed:
// a resumed attempt must replay the same ordering.
// swagger:model ExamAttempt
type ExamAttempt struct {
	UUIDBase
	SchoolID   uint          `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	ScheduleID uint          `gorm:"index;type:bigint unsigned;not null" json:"scheduleId"`
	StudentID  uint          `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	Status     AttemptStatus `gorm:"size:20;default:'in_progress'" json:"status"`

	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	QuestionOrder string `gorm:"type:json" json:"questionOrder"` // JSON: []uint
	AnswerOrder   string `gorm:"type:json" json:"answerOrder"`   // JSON: map[questionID][]optionKey

	Score            int `gorm:"default:0" json:"score"`
	CorrectCount     int `gorm:"default:0" json:"correctCount"`
	TotalTimeSeconds int `gorm:"default:0" json:"totalTimeSeconds"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

func (a *ExamAttempt) QuestionOrderList() ([]uint, error) {
	if a.QuestionOrder == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(a.QuestionOrder), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (a *ExamAttempt) OptionOrderMap() (map[uint][]string, error) {
	if a.AnswerOrder == "" {
		return nil, nil
	}
	m := make(map[uint][]string)
	if err := json.Unmarshal([]byte(a.AnswerOrder), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *ExamAttempt) SetSnapshot(order []uint, optionOrder map[uint][]string) error {
	ob, err := json.Marshal(order)
	if err != nil {
		return err
	}
	ab, err := json.Marshal(optionOrder)
	if err != nil {
		return err
	}
	a.QuestionOrder = string(ob)
	a.AnswerOrder = string(ab)
	return nil
}
