package repository

import (
	"school_exam_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(schoolID, id uint) error {
	return r.DB.Where("school_id = ?", schoolID).Delete(&model.Question{}, id).Error
}

// FindByID returns the question only if schoolID may see it: owned by
// the tenant or shared. This is the authorization boundary for
// cross-tenant question reuse.
func (r *QuestionRepository) FindByID(schoolID, id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("id = ? AND (school_id = ? OR visibility = ?)", id, schoolID, model.VisibilityShared).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindOwnedByID returns the question only if the tenant owns it; used
// for mutation paths where shared visibility is not enough.
func (r *QuestionRepository) FindOwnedByID(schoolID, id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("id = ? AND school_id = ?", id, schoolID).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

type QuestionFilter struct {
	SubjectID  uint
	Type       model.QuestionType
	Difficulty model.Difficulty
	GroupID    *uint
}

func (r *QuestionRepository) List(schoolID uint, filter QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64

	query := r.DB.Model(&model.Question{}).
		Where("school_id = ? OR visibility = ?", schoolID, model.VisibilityShared)
	if filter.SubjectID > 0 {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// FindVisibleByIDs loads the given questions preserving nothing about
// order; callers re-order by their own id list. Only questions visible
// to schoolID are returned, so a missing id signals a configuration or
// authorization problem.
func (r *QuestionRepository) FindVisibleByIDs(schoolID uint, ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	err := r.DB.Where("id IN ?", ids).
		Where("school_id = ? OR visibility = ?", schoolID, model.VisibilityShared).
		Find(&qs).Error
	return qs, err
}

// Group operations.

func (r *QuestionRepository) CreateGroup(g *model.QuestionGroup) error {
	return r.DB.Create(g).Error
}

func (r *QuestionRepository) FindGroupByID(schoolID, id uint) (*model.QuestionGroup, error) {
	var g model.QuestionGroup
	err := r.DB.Where("id = ? AND school_id = ?", id, schoolID).First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *QuestionRepository) UpdateGroup(g *model.QuestionGroup) error {
	return r.DB.Save(g).Error
}

// GroupMembers returns the group's questions in intra-group order.
func (r *QuestionRepository) GroupMembers(groupID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("group_id = ?", groupID).Order("group_order asc").Find(&qs).Error
	return qs, err
}
