package model

import (
	"encoding/json"
	"time"
)

// AnswerPayload is the raw, type-dependent shape a student submits.
// Key for selectable types, Texts for fill-blank (one or more blanks),
// Texts[0] for essays, Mapping for matching.
type AnswerPayload struct {
	Key     string            `json:"key,omitempty"`
	Texts   []string          `json:"texts,omitempty"`
	Mapping map[string]string `json:"mapping,omitempty"`
}

// QuestionSnapshot freezes the question as the student saw it. Grading
// always runs against the snapshot, so edits to the bank after
// submission can never change an awarded score.
type QuestionSnapshot struct {
	Type          QuestionType     `json:"type"`
	Options       []QuestionOption `json:"options,omitempty"`
	CorrectAnswer CorrectAnswer    `json:"correctAnswer"`
	Points        int              `json:"points"`
}

func SnapshotOf(q *Question) (QuestionSnapshot, error) {
	opts, err := q.OptionList()
	if err != nil {
		return QuestionSnapshot{}, err
	}
	ca, err := q.Correct()
	if err != nil {
		return QuestionSnapshot{}, err
	}
	return QuestionSnapshot{
		Type:          q.Type,
		Options:       opts,
		CorrectAnswer: ca,
		Points:        q.Points,
	}, nil
}

// ExamAnswer is the single row per (attempt, question). Re-submission
// updates in place; it never appends.
// swagger:model ExamAnswer
type ExamAnswer struct {
	BaseModel
	SchoolID   uint   `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	AttemptID  string `gorm:"uniqueIndex:idx_attempt_question;type:varchar(36);not null" json:"attemptId"`
	QuestionID uint   `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned;not null" json:"questionId"`

	Answer   string `gorm:"type:json" json:"answer"`   // JSON: AnswerPayload
	Question string `gorm:"type:json" json:"question"` // JSON: QuestionSnapshot

	IsCorrect        *bool     `json:"isCorrect"` // nil = pending manual grading
	PointsAwarded    int       `gorm:"default:0" json:"pointsAwarded"`
	TimeSpentSeconds int       `gorm:"default:0" json:"timeSpentSeconds"`
	IsAutoSaved      bool      `gorm:"default:false" json:"isAutoSaved"`
	AnsweredAt       time.Time `json:"answeredAt"`
}

func (ExamAnswer) TableName() string {
	return "exam_answers"
}

func (a *ExamAnswer) Payload() (AnswerPayload, error) {
	var p AnswerPayload
	if a.Answer == "" {
		return p, nil
	}
	err := json.Unmarshal([]byte(a.Answer), &p)
	return p, err
}

func (a *ExamAnswer) SetPayload(p AnswerPayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	a.Answer = string(b)
	return nil
}

func (a *ExamAnswer) Snapshot() (QuestionSnapshot, error) {
	var s QuestionSnapshot
	if a.Question == "" {
		return s, nil
	}
	err := json.Unmarshal([]byte(a.Question), &s)
	return s, err
}

func (a *ExamAnswer) SetSnapshot(s QuestionSnapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	a.Question = string(b)
	return nil
}
