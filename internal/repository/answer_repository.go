package repository

import (
	"school_exam_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Upsert writes the single row for (attempt, question). A later write
// for the same pair updates in place; at most one row ever exists.
func (r *AnswerRepository) Upsert(a *model.ExamAnswer) error {
	return r.DB.Clauses(answerConflict()).Create(a).Error
}

// answerConflict is the upsert rule for the (attempt, question) key: a
// repeat write replaces the answer and its grading in place and never
// touches the key or the row identity.
func answerConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answer", "question", "is_correct", "points_awarded",
			"time_spent_seconds", "is_auto_saved", "answered_at", "updated_at",
		}),
	}
}

func (r *AnswerRepository) Update(a *model.ExamAnswer) error {
	return r.DB.Save(a).Error
}

func (r *AnswerRepository) FindByID(schoolID, id uint) (*model.ExamAnswer, error) {
	var a model.ExamAnswer
	err := r.DB.Where("school_id = ?", schoolID).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) FindByAttemptAndQuestion(attemptID string, questionID uint) (*model.ExamAnswer, error) {
	var a model.ExamAnswer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) ListByAttempt(attemptID string) ([]model.ExamAnswer, error) {
	var answers []model.ExamAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("question_id asc").Find(&answers).Error
	return answers, err
}

// ListByAttempts loads the answers of many attempts in one query, for
// analytics aggregation.
func (r *AnswerRepository) ListByAttempts(attemptIDs []string) ([]model.ExamAnswer, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	var answers []model.ExamAnswer
	err := r.DB.Where("attempt_id IN ?", attemptIDs).Find(&answers).Error
	return answers, err
}
