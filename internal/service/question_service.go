package service

import (
	"errors"
	"fmt"
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/repository"
	"school_exam_backend/internal/util"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// QuestionService is the question bank: authoring, grouping, sharing
// and cross-tenant copies.
type QuestionService struct {
	Repo *repository.QuestionRepository
	DB   *gorm.DB
}

func NewQuestionService(repo *repository.QuestionRepository, db *gorm.DB) *QuestionService {
	return &QuestionService{Repo: repo, DB: db}
}

type QuestionRequest struct {
	SubjectID     uint                   `json:"subjectId"`
	Type          model.QuestionType     `json:"type" binding:"required"`
	Content       string                 `json:"content" binding:"required"`
	AttachmentURL string                 `json:"attachmentUrl"`
	Options       []model.QuestionOption `json:"options"`
	CorrectAnswer model.CorrectAnswer    `json:"correctAnswer"`
	Points        int                    `json:"points"`
	Difficulty    model.Difficulty       `json:"difficulty"`
	Explanation   string                 `json:"explanation"`
}

// ValidateQuestion checks every authoring rule and returns the full
// list of violations, so the author sees all problems in one pass.
func ValidateQuestion(req QuestionRequest) util.ValidationErrors {
	var errs util.ValidationErrors

	if !req.Type.Valid() {
		errs = append(errs, fmt.Sprintf("unknown question type %q", req.Type))
		return errs
	}
	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, "content must not be empty")
	}
	if req.Points <= 0 {
		errs = append(errs, "points must be greater than zero")
	}

	switch req.Type {
	case model.SingleChoice, model.TrueFalse:
		if len(req.Options) == 0 {
			errs = append(errs, "selectable questions require a non-empty option set")
		}
		seen := make(map[string]bool, len(req.Options))
		for _, o := range req.Options {
			if o.Key == "" {
				errs = append(errs, "option keys must not be empty")
			}
			if seen[o.Key] {
				errs = append(errs, fmt.Sprintf("duplicate option key %q", o.Key))
			}
			seen[o.Key] = true
		}
		if req.CorrectAnswer.Kind != model.AnswerKey {
			errs = append(errs, "selectable questions require a correct-answer key")
		} else if !seen[req.CorrectAnswer.Key] {
			errs = append(errs, fmt.Sprintf("correct-answer key %q is not in the option set", req.CorrectAnswer.Key))
		}

	case model.FillBlank:
		if req.CorrectAnswer.Kind != model.AnswerSet {
			errs = append(errs, "fill-blank questions require an accepted-answer set")
		} else {
			nonEmpty := 0
			for _, a := range req.CorrectAnswer.Accepted {
				if strings.TrimSpace(a) != "" {
					nonEmpty++
				}
			}
			if nonEmpty == 0 {
				errs = append(errs, "fill-blank questions require at least one non-empty accepted answer")
			}
		}

	case model.Matching:
		if req.CorrectAnswer.Kind != model.AnswerMapping || len(req.CorrectAnswer.Mapping) == 0 {
			errs = append(errs, "matching questions require a non-empty correct mapping")
		}

	case model.Essay:
		if req.CorrectAnswer.Kind != "" && req.CorrectAnswer.Kind != model.AnswerNone {
			errs = append(errs, "essay questions carry no machine-gradable correct answer")
		}
	}

	return errs
}

func (s *QuestionService) CreateQuestion(schoolID, creatorID uint, req QuestionRequest) (*model.Question, error) {
	if errs := ValidateQuestion(req); errs.Any() {
		return nil, errs
	}

	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMedium
	}
	if req.CorrectAnswer.Kind == "" {
		req.CorrectAnswer.Kind = model.AnswerNone
	}

	q := &model.Question{
		SchoolID:      schoolID,
		SubjectID:     req.SubjectID,
		CreatorID:     creatorID,
		Type:          req.Type,
		Content:       req.Content,
		AttachmentURL: req.AttachmentURL,
		Points:        req.Points,
		Difficulty:    req.Difficulty,
		Visibility:    model.VisibilityPrivate,
		Explanation:   req.Explanation,
	}
	if err := q.SetOptions(req.Options); err != nil {
		return nil, err
	}
	if err := q.SetCorrect(req.CorrectAnswer); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) UpdateQuestion(schoolID, id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Repo.FindOwnedByID(schoolID, id)
	if err != nil {
		return nil, util.ErrNotFound
	}

	if errs := ValidateQuestion(req); errs.Any() {
		return nil, errs
	}

	q.SubjectID = req.SubjectID
	q.Type = req.Type
	q.Content = req.Content
	q.AttachmentURL = req.AttachmentURL
	q.Points = req.Points
	if req.Difficulty != "" {
		q.Difficulty = req.Difficulty
	}
	q.Explanation = req.Explanation
	if err := q.SetOptions(req.Options); err != nil {
		return nil, err
	}
	if err := q.SetCorrect(req.CorrectAnswer); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) GetQuestion(schoolID, id uint) (*model.Question, error) {
	q, err := s.Repo.FindByID(schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) ListQuestions(schoolID uint, filter repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	return s.Repo.List(schoolID, filter, page, limit)
}

func (s *QuestionService) DeleteQuestion(schoolID, id uint) error {
	if _, err := s.Repo.FindOwnedByID(schoolID, id); err != nil {
		return util.ErrNotFound
	}
	return s.Repo.Delete(schoolID, id)
}

// SetShared toggles cross-tenant visibility. Sharing stamps SharedAt;
// unsharing clears it.
func (s *QuestionService) SetShared(schoolID, id uint, shared bool) (*model.Question, error) {
	q, err := s.Repo.FindOwnedByID(schoolID, id)
	if err != nil {
		return nil, util.ErrNotFound
	}

	if shared {
		now := time.Now()
		q.Visibility = model.VisibilityShared
		q.SharedAt = &now
	} else {
		q.Visibility = model.VisibilityPrivate
		q.SharedAt = nil
	}

	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// CopyQuestion clones a visible question into the target tenant. The
// copy starts private, freshly owned, and detached from any group.
func (s *QuestionService) CopyQuestion(targetSchoolID, newOwnerID, questionID uint) (*model.Question, error) {
	src, err := s.Repo.FindByID(targetSchoolID, questionID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	dst := &model.Question{}
	if err := copier.Copy(dst, src); err != nil {
		return nil, err
	}
	resetQuestionCopy(dst, targetSchoolID, newOwnerID)
	dst.GroupID = nil
	dst.GroupOrder = 0

	if err := s.Repo.Create(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func resetQuestionCopy(q *model.Question, schoolID, ownerID uint) {
	q.ID = 0
	q.CreatedAt = time.Time{}
	q.UpdatedAt = time.Time{}
	q.SchoolID = schoolID
	q.CreatorID = ownerID
	q.Visibility = model.VisibilityPrivate
	q.SharedAt = nil
}

type GroupRequest struct {
	SubjectID    uint               `json:"subjectId"`
	Title        string             `json:"title"`
	StimulusType model.StimulusType `json:"stimulusType"`
	StimulusText string             `json:"stimulusText"`
	StimulusURL  string             `json:"stimulusUrl"`
}

func (s *QuestionService) CreateGroup(schoolID, creatorID uint, req GroupRequest) (*model.QuestionGroup, error) {
	if req.StimulusType == "" {
		req.StimulusType = model.StimulusText
	}
	g := &model.QuestionGroup{
		SchoolID:     schoolID,
		SubjectID:    req.SubjectID,
		CreatorID:    creatorID,
		Title:        req.Title,
		StimulusType: req.StimulusType,
		StimulusText: req.StimulusText,
		StimulusURL:  req.StimulusURL,
	}
	if err := s.Repo.CreateGroup(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *QuestionService) GetGroup(schoolID, groupID uint) (*model.QuestionGroup, []model.Question, error) {
	g, err := s.Repo.FindGroupByID(schoolID, groupID)
	if err != nil {
		return nil, nil, util.ErrNotFound
	}
	members, err := s.Repo.GroupMembers(g.ID)
	if err != nil {
		return nil, nil, err
	}
	return g, members, nil
}

// AttachQuestions appends owned questions to a group, numbering them
// after the existing members so order stays contiguous from 1.
func (s *QuestionService) AttachQuestions(schoolID, groupID uint, questionIDs []uint) error {
	g, err := s.Repo.FindGroupByID(schoolID, groupID)
	if err != nil {
		return util.ErrNotFound
	}

	members, err := s.Repo.GroupMembers(g.ID)
	if err != nil {
		return err
	}
	next := len(members) + 1

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, id := range questionIDs {
			q, err := s.Repo.FindOwnedByID(schoolID, id)
			if err != nil {
				return util.ErrNotFound
			}
			if q.GroupID != nil {
				return util.ValidationErrors{fmt.Sprintf("question %d already belongs to a group", id)}
			}
			q.GroupID = &g.ID
			q.GroupOrder = next
			next++
			if err := tx.Save(q).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DetachQuestion removes one member and renumbers the remainder so the
// group stays contiguous from 1.
func (s *QuestionService) DetachQuestion(schoolID, groupID, questionID uint) error {
	g, err := s.Repo.FindGroupByID(schoolID, groupID)
	if err != nil {
		return util.ErrNotFound
	}

	q, err := s.Repo.FindOwnedByID(schoolID, questionID)
	if err != nil {
		return util.ErrNotFound
	}
	if q.GroupID == nil || *q.GroupID != g.ID {
		return util.ErrNotFound
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		q.GroupID = nil
		q.GroupOrder = 0
		if err := tx.Save(q).Error; err != nil {
			return err
		}

		// Re-read through the transaction so the detach above is
		// visible to the renumbering pass.
		var members []model.Question
		if err := tx.Where("group_id = ?", g.ID).Order("group_order asc").Find(&members).Error; err != nil {
			return err
		}
		for _, m := range renumberGroupExcluding(members, questionID) {
			if err := tx.Save(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// renumberGroupExcluding reassigns intra-group positions so the
// remaining members are ordered 1..n with no holes. The detached
// member is skipped even if a stale read still contains it.
func renumberGroupExcluding(members []model.Question, detachedID uint) []*model.Question {
	renumbered := make([]*model.Question, 0, len(members))
	next := 1
	for i := range members {
		if members[i].ID == detachedID {
			continue
		}
		members[i].GroupOrder = next
		next++
		renumbered = append(renumbered, &members[i])
	}
	return renumbered
}

// ReorderGroup renumbers every member to the given sequence. The id
// list must name each member exactly once.
func (s *QuestionService) ReorderGroup(schoolID, groupID uint, orderedIDs []uint) error {
	g, err := s.Repo.FindGroupByID(schoolID, groupID)
	if err != nil {
		return util.ErrNotFound
	}

	members, err := s.Repo.GroupMembers(g.ID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(members) {
		return util.ValidationErrors{"reorder must list every group member exactly once"}
	}
	byID := make(map[uint]*model.Question, len(members))
	for i := range members {
		byID[members[i].ID] = &members[i]
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			q, ok := byID[id]
			if !ok {
				return util.ValidationErrors{fmt.Sprintf("question %d is not a member of the group", id)}
			}
			q.GroupOrder = i + 1
			if err := tx.Save(q).Error; err != nil {
				return err
			}
			delete(byID, id)
		}
		return nil
	})
}

// CopyGroup clones a whole group, stimulus and members, into the
// target tenant, preserving internal order and clearing share state.
func (s *QuestionService) CopyGroup(targetSchoolID, newOwnerID, groupID uint) (*model.QuestionGroup, error) {
	var src model.QuestionGroup
	if err := s.DB.First(&src, groupID).Error; err != nil {
		return nil, util.ErrNotFound
	}

	members, err := s.Repo.GroupMembers(src.ID)
	if err != nil {
		return nil, err
	}
	// Copying a whole group requires each member to be visible.
	for _, m := range members {
		if !m.VisibleTo(targetSchoolID) {
			return nil, util.ErrPermissionDenied
		}
	}

	dstGroup := &model.QuestionGroup{}
	if err := copier.Copy(dstGroup, &src); err != nil {
		return nil, err
	}
	dstGroup.ID = 0
	dstGroup.CreatedAt = time.Time{}
	dstGroup.UpdatedAt = time.Time{}
	dstGroup.SchoolID = targetSchoolID
	dstGroup.CreatorID = newOwnerID

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dstGroup).Error; err != nil {
			return err
		}
		for i := range members {
			dq := &model.Question{}
			if err := copier.Copy(dq, &members[i]); err != nil {
				return err
			}
			resetQuestionCopy(dq, targetSchoolID, newOwnerID)
			dq.GroupID = &dstGroup.ID
			dq.GroupOrder = i + 1
			if err := tx.Create(dq).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dstGroup, nil
}
