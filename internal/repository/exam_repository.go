package repository

import (
	"school_exam_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) FindByID(schoolID, id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Where("school_id = ?", schoolID).First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) FindByIDWithSubjects(schoolID, id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Where("school_id = ?", schoolID).
		Preload("Subjects").Preload("Schedules").
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) List(schoolID uint, status model.ExamStatus, page, limit int) ([]model.Exam, int64, error) {
	var exams []model.Exam
	var total int64

	query := r.DB.Model(&model.Exam{}).Where("school_id = ?", schoolID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&exams).Error
	return exams, total, err
}

// Subjects.

func (r *ExamRepository) CreateSubject(s *model.ExamSubject) error {
	return r.DB.Create(s).Error
}

func (r *ExamRepository) UpdateSubject(s *model.ExamSubject) error {
	return r.DB.Save(s).Error
}

func (r *ExamRepository) FindSubjectByID(id uint) (*model.ExamSubject, error) {
	var s model.ExamSubject
	err := r.DB.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ExamRepository) SubjectsByExam(examID uint) ([]model.ExamSubject, error) {
	var subjects []model.ExamSubject
	err := r.DB.Where("exam_id = ?", examID).Order("id asc").Find(&subjects).Error
	return subjects, err
}
