package repository

import (
	"school_exam_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(a *model.ExamAttempt) error {
	return r.DB.Create(a).Error
}

func (r *AttemptRepository) Update(a *model.ExamAttempt) error {
	return r.DB.Save(a).Error
}

func (r *AttemptRepository) FindByID(schoolID uint, id string) (*model.ExamAttempt, error) {
	var a model.ExamAttempt
	err := r.DB.Where("id = ? AND school_id = ?", id, schoolID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountTowardsLimit counts the attempts that consume the student's
// budget for a schedule. Abandoned attempts do not count.
func (r *AttemptRepository) CountTowardsLimit(scheduleID, studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).
		Where("schedule_id = ? AND student_id = ? AND status <> ?", scheduleID, studentID, model.AttemptAbandoned).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByStudent(schoolID, studentID uint, page, limit int) ([]model.ExamAttempt, int64, error) {
	var attempts []model.ExamAttempt
	var total int64

	query := r.DB.Model(&model.ExamAttempt{}).
		Where("school_id = ? AND student_id = ?", schoolID, studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// CompletedBySchedule returns the attempts that analytics aggregates:
// completed and timed-out runs only. In-progress attempts are excluded
// by definition, not by locking.
func (r *AttemptRepository) CompletedBySchedule(schoolID, scheduleID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("school_id = ? AND schedule_id = ?", schoolID, scheduleID).
		Where("status IN ?", []model.AttemptStatus{model.AttemptCompleted, model.AttemptTimeout}).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListPendingManual(schoolID, scheduleID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.
		Joins("JOIN exam_answers ON exam_answers.attempt_id = exam_attempts.id AND exam_answers.is_correct IS NULL AND exam_answers.deleted_at IS NULL").
		Where("exam_attempts.school_id = ? AND exam_attempts.schedule_id = ?", schoolID, scheduleID).
		Where("exam_attempts.status IN ?", []model.AttemptStatus{model.AttemptCompleted, model.AttemptTimeout}).
		Group("exam_attempts.id").
		Find(&attempts).Error
	return attempts, err
}
