package model

import (
	"encoding/json"
	"time"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	TrueFalse    QuestionType = "true_false"
	Essay        QuestionType = "essay"
	FillBlank    QuestionType = "fill_blank"
	Matching     QuestionType = "matching"
)

// Selectable reports whether the type carries an option set the student
// picks from.
func (t QuestionType) Selectable() bool {
	return t == SingleChoice || t == TrueFalse
}

// AutoGradable reports whether the scorer can decide correctness without
// a human. Essay answers stay pending until graded manually.
func (t QuestionType) AutoGradable() bool {
	return t != Essay
}

func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, TrueFalse, Essay, FillBlank, Matching:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
)

// QuestionOption is one entry of the ordered option set. Order in the
// stored JSON array is the authoring order.
type QuestionOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type AnswerKind string

const (
	AnswerKey     AnswerKind = "key"     // single option key (single_choice, true_false)
	AnswerSet     AnswerKind = "set"     // accepted strings (fill_blank)
	AnswerMapping AnswerKind = "mapping" // left->right pairs (matching)
	AnswerNone    AnswerKind = "none"    // manually graded (essay)
)

// CorrectAnswer is the tagged variant the scorer dispatches on. Exactly
// one of Key/Accepted/Mapping is populated depending on Kind.
type CorrectAnswer struct {
	Kind     AnswerKind        `json:"kind"`
	Key      string            `json:"key,omitempty"`
	Accepted []string          `json:"accepted,omitempty"`
	Mapping  map[string]string `json:"mapping,omitempty"`
}

// swagger:model Question
type Question struct {
	BaseModel
	SchoolID      uint         `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	SubjectID     uint         `gorm:"index;type:bigint unsigned" json:"subjectId"`
	CreatorID     uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Type          QuestionType `gorm:"size:50;not null" json:"type"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	AttachmentURL string       `gorm:"size:500" json:"attachmentUrl,omitempty"`
	Options       string       `gorm:"type:json" json:"options"`       // JSON: []QuestionOption
	CorrectAnswer string       `gorm:"type:json" json:"correctAnswer"` // JSON: CorrectAnswer
	Points        int          `gorm:"default:1" json:"points"`
	Difficulty    Difficulty   `gorm:"size:20;default:'medium'" json:"difficulty"`
	Visibility    Visibility   `gorm:"size:20;default:'private'" json:"visibility"`
	SharedAt      *time.Time   `json:"sharedAt,omitempty"`
	GroupID       *uint        `gorm:"index;type:bigint unsigned" json:"groupId,omitempty"`
	GroupOrder    int          `gorm:"default:0" json:"groupOrder"`
	Explanation   string       `gorm:"type:text" json:"explanation,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) OptionList() ([]QuestionOption, error) {
	if q.Options == "" {
		return nil, nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal([]byte(q.Options), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (q *Question) SetOptions(opts []QuestionOption) error {
	b, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = string(b)
	return nil
}

func (q *Question) Correct() (CorrectAnswer, error) {
	var ca CorrectAnswer
	if q.CorrectAnswer == "" {
		ca.Kind = AnswerNone
		return ca, nil
	}
	err := json.Unmarshal([]byte(q.CorrectAnswer), &ca)
	return ca, err
}

func (q *Question) SetCorrect(ca CorrectAnswer) error {
	b, err := json.Marshal(ca)
	if err != nil {
		return err
	}
	q.CorrectAnswer = string(b)
	return nil
}

// HasOptionKey reports whether key exists in the stored option set.
func (q *Question) HasOptionKey(key string) bool {
	opts, err := q.OptionList()
	if err != nil {
		return false
	}
	for _, o := range opts {
		if o.Key == key {
			return true
		}
	}
	return false
}

// VisibleTo implements the sole cross-tenant authorization rule for the
// question bank: own tenant, or explicitly shared.
func (q *Question) VisibleTo(schoolID uint) bool {
	return q.SchoolID == schoolID || q.Visibility == VisibilityShared
}
