package model

import "encoding/json"

// ExamSubject is one subject block of an exam: a fixed, ordered set of
// question ids plus the targets the authoring UI promises (question
// count, total score, duration). Targets are validated against the
// referenced questions, never silently corrected.
// swagger:model ExamSubject
type ExamSubject struct {
	BaseModel
	ExamID          uint   `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	SubjectID       uint   `gorm:"index;type:bigint unsigned" json:"subjectId"`
	Name            string `gorm:"size:255" json:"name"`
	QuestionIDs     string `gorm:"type:json" json:"questionIds"` // JSON: []uint, authoring order
	TotalQuestions  int    `gorm:"default:0" json:"totalQuestions"`
	TotalScore      int    `gorm:"default:0" json:"totalScore"`
	DurationMinutes int    `gorm:"default:0" json:"durationMinutes"`
}

func (ExamSubject) TableName() string {
	return "exam_subjects"
}

func (s *ExamSubject) QuestionIDList() ([]uint, error) {
	if s.QuestionIDs == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(s.QuestionIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ExamSubject) SetQuestionIDs(ids []uint) error {
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	s.QuestionIDs = string(b)
	return nil
}
