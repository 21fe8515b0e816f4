package repository

import (
	"school_exam_backend/internal/model"

	"gorm.io/gorm"
)

type ScheduleRepository struct {
	DB *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

func (r *ScheduleRepository) Create(s *model.ExamSchedule) error {
	return r.DB.Create(s).Error
}

func (r *ScheduleRepository) Update(s *model.ExamSchedule) error {
	return r.DB.Save(s).Error
}

func (r *ScheduleRepository) FindByID(schoolID, id uint) (*model.ExamSchedule, error) {
	var s model.ExamSchedule
	err := r.DB.Where("school_id = ?", schoolID).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) ListByExam(schoolID, examID uint) ([]model.ExamSchedule, error) {
	var schedules []model.ExamSchedule
	err := r.DB.Where("school_id = ? AND exam_id = ?", schoolID, examID).
		Order("start_at asc").Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) ListByClass(schoolID, classID uint) ([]model.ExamSchedule, error) {
	var schedules []model.ExamSchedule
	err := r.DB.Where("school_id = ? AND class_id = ?", schoolID, classID).
		Order("start_at asc").Find(&schedules).Error
	return schedules, err
}
