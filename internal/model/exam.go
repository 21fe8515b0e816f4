package model

import "time"

type ExamType string

const (
	ExamQuiz       ExamType = "quiz"
	ExamMidterm    ExamType = "midterm"
	ExamFinal      ExamType = "final"
	ExamAssignment ExamType = "assignment"
)

type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamScheduled ExamStatus = "scheduled"
	ExamOngoing   ExamStatus = "ongoing"
	ExamCompleted ExamStatus = "completed"
	ExamCancelled ExamStatus = "cancelled"
)

// examStatusFlow encodes the monotonic authoring lifecycle.
var examStatusFlow = map[ExamStatus][]ExamStatus{
	ExamDraft:     {ExamScheduled, ExamCancelled},
	ExamScheduled: {ExamOngoing, ExamCancelled},
	ExamOngoing:   {ExamCompleted, ExamCancelled},
}

func (s ExamStatus) CanTransitionTo(next ExamStatus) bool {
	for _, allowed := range examStatusFlow[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// swagger:model Exam
type Exam struct {
	BaseModel
	SchoolID    uint       `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	CreatorID   uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Type        ExamType   `gorm:"size:20;default:'quiz'" json:"type"`
	StartAt     *time.Time `json:"startAt,omitempty"`
	EndAt       *time.Time `json:"endAt,omitempty"`
	Status      ExamStatus `gorm:"size:20;default:'draft'" json:"status"`

	// Default randomization flags; schedules may override per class.
	RandomizeQuestions bool `gorm:"default:false" json:"randomizeQuestions"`
	RandomizeAnswers   bool `gorm:"default:false" json:"randomizeAnswers"`

	Subjects  []ExamSubject  `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
	Schedules []ExamSchedule `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"schedules,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}
