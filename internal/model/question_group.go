package model

type StimulusType string

const (
	StimulusText  StimulusType = "text"
	StimulusImage StimulusType = "image"
	StimulusTable StimulusType = "table"
)

// QuestionGroup is a shared stimulus (reading passage, image, table)
// followed by an ordered run of member questions. Member GroupOrder
// values are kept unique and contiguous from 1 by the question bank.
// swagger:model QuestionGroup
type QuestionGroup struct {
	BaseModel
	SchoolID     uint         `gorm:"index;type:bigint unsigned;not null" json:"schoolId"`
	SubjectID    uint         `gorm:"index;type:bigint unsigned" json:"subjectId"`
	CreatorID    uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title        string       `gorm:"size:255" json:"title"`
	StimulusType StimulusType `gorm:"size:20;default:'text'" json:"stimulusType"`
	StimulusText string       `gorm:"type:text" json:"stimulusText,omitempty"`
	StimulusURL  string       `gorm:"size:500" json:"stimulusUrl,omitempty"`
}

func (QuestionGroup) TableName() string {
	return "question_groups"
}
