package service

import (
	"errors"
	"fmt"
	"school_exam_backend/internal/config"
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/repository"
	"school_exam_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// ExamService manages exam definitions, their subject blocks and
// per-class schedules.
type ExamService struct {
	ExamRepo     *repository.ExamRepository
	ScheduleRepo *repository.ScheduleRepository
	QuestionRepo *repository.QuestionRepository
	Cfg          *config.Config
}

func NewExamService(examRepo *repository.ExamRepository, scheduleRepo *repository.ScheduleRepository, questionRepo *repository.QuestionRepository, cfg *config.Config) *ExamService {
	return &ExamService{ExamRepo: examRepo, ScheduleRepo: scheduleRepo, QuestionRepo: questionRepo, Cfg: cfg}
}

type ExamRequest struct {
	Title              string         `json:"title" binding:"required"`
	Description        string         `json:"description"`
	Type               model.ExamType `json:"type"`
	StartAt            *time.Time     `json:"startAt"`
	EndAt              *time.Time     `json:"endAt"`
	RandomizeQuestions bool           `json:"randomizeQuestions"`
	RandomizeAnswers   bool           `json:"randomizeAnswers"`
}

func (s *ExamService) CreateExam(schoolID, creatorID uint, req ExamRequest) (*model.Exam, error) {
	if req.Type == "" {
		req.Type = model.ExamQuiz
	}
	if req.StartAt != nil && req.EndAt != nil && !req.EndAt.After(*req.StartAt) {
		return nil, util.ValidationErrors{"endAt must be after startAt"}
	}

	exam := &model.Exam{
		SchoolID:           schoolID,
		CreatorID:          creatorID,
		Title:              req.Title,
		Description:        req.Description,
		Type:               req.Type,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		Status:             model.ExamDraft,
		RandomizeQuestions: req.RandomizeQuestions,
		RandomizeAnswers:   req.RandomizeAnswers,
	}
	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) UpdateExam(schoolID, id uint, req ExamRequest) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(schoolID, id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if exam.Status != model.ExamDraft {
		return nil, util.ErrExamNotEditable
	}
	if req.StartAt != nil && req.EndAt != nil && !req.EndAt.After(*req.StartAt) {
		return nil, util.ValidationErrors{"endAt must be after startAt"}
	}

	exam.Title = req.Title
	exam.Description = req.Description
	if req.Type != "" {
		exam.Type = req.Type
	}
	exam.StartAt = req.StartAt
	exam.EndAt = req.EndAt
	exam.RandomizeQuestions = req.RandomizeQuestions
	exam.RandomizeAnswers = req.RandomizeAnswers

	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) GetExam(schoolID, id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByIDWithSubjects(schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ListExams(schoolID uint, status model.ExamStatus, page, limit int) ([]model.Exam, int64, error) {
	return s.ExamRepo.List(schoolID, status, page, limit)
}

// TransitionStatus moves the exam along its lifecycle. Illegal jumps
// are rejected rather than coerced.
func (s *ExamService) TransitionStatus(schoolID, id uint, next model.ExamStatus) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(schoolID, id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if !exam.Status.CanTransitionTo(next) {
		return nil, util.ErrInvalidTransition
	}
	exam.Status = next
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

type SubjectRequest struct {
	SubjectID       uint   `json:"subjectId"`
	Name            string `json:"name"`
	QuestionIDs     []uint `json:"questionIds" binding:"required"`
	TotalQuestions  int    `json:"totalQuestions"`
	TotalScore      int    `json:"totalScore"`
	DurationMinutes int    `json:"durationMinutes"`
}

// validateSubject cross-checks the declared targets against the
// referenced questions. Every violation is reported, none repaired.
func (s *ExamService) validateSubject(schoolID uint, req SubjectRequest) util.ValidationErrors {
	var errs util.ValidationErrors

	if len(req.QuestionIDs) == 0 {
		errs = append(errs, "a subject requires at least one question")
		return errs
	}
	if req.DurationMinutes <= 0 {
		errs = append(errs, "durationMinutes must be greater than zero")
	}

	seen := make(map[uint]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if seen[id] {
			errs = append(errs, fmt.Sprintf("question %d listed more than once", id))
		}
		seen[id] = true
	}

	questions, err := s.QuestionRepo.FindVisibleByIDs(schoolID, req.QuestionIDs)
	if err != nil {
		errs = append(errs, "failed to load referenced questions")
		return errs
	}
	found := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		found[questions[i].ID] = &questions[i]
	}
	points := 0
	for _, id := range req.QuestionIDs {
		q, ok := found[id]
		if !ok {
			errs = append(errs, fmt.Sprintf("question %d does not exist or is not visible", id))
			continue
		}
		points += q.Points
	}

	if req.TotalQuestions != 0 && req.TotalQuestions != len(req.QuestionIDs) {
		errs = append(errs, fmt.Sprintf("totalQuestions is %d but %d questions are listed", req.TotalQuestions, len(req.QuestionIDs)))
	}
	if len(errs) == 0 && req.TotalScore != 0 && req.TotalScore != points {
		errs = append(errs, fmt.Sprintf("totalScore is %d but listed questions sum to %d", req.TotalScore, points))
	}

	return errs
}

func (s *ExamService) AddSubject(schoolID, examID uint, req SubjectRequest) (*model.ExamSubject, error) {
	exam, err := s.ExamRepo.FindByID(schoolID, examID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if exam.Status != model.ExamDraft {
		return nil, util.ErrExamNotEditable
	}
	if errs := s.validateSubject(schoolID, req); errs.Any() {
		return nil, errs
	}

	subject := &model.ExamSubject{
		ExamID:          exam.ID,
		SubjectID:       req.SubjectID,
		Name:            req.Name,
		TotalQuestions:  len(req.QuestionIDs),
		TotalScore:      req.TotalScore,
		DurationMinutes: req.DurationMinutes,
	}
	if subject.TotalScore == 0 {
		subject.TotalScore = s.sumPoints(schoolID, req.QuestionIDs)
	}
	if err := subject.SetQuestionIDs(req.QuestionIDs); err != nil {
		return nil, err
	}
	if err := s.ExamRepo.CreateSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *ExamService) UpdateSubject(schoolID, examID, subjectID uint, req SubjectRequest) (*model.ExamSubject, error) {
	exam, err := s.ExamRepo.FindByID(schoolID, examID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if exam.Status != model.ExamDraft {
		return nil, util.ErrExamNotEditable
	}
	subject, err := s.ExamRepo.FindSubjectByID(subjectID)
	if err != nil || subject.ExamID != exam.ID {
		return nil, util.ErrNotFound
	}
	if errs := s.validateSubject(schoolID, req); errs.Any() {
		return nil, errs
	}

	subject.SubjectID = req.SubjectID
	subject.Name = req.Name
	subject.TotalQuestions = len(req.QuestionIDs)
	subject.TotalScore = req.TotalScore
	subject.DurationMinutes = req.DurationMinutes
	if subject.TotalScore == 0 {
		subject.TotalScore = s.sumPoints(schoolID, req.QuestionIDs)
	}
	if err := subject.SetQuestionIDs(req.QuestionIDs); err != nil {
		return nil, err
	}
	if err := s.ExamRepo.UpdateSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *ExamService) sumPoints(schoolID uint, ids []uint) int {
	questions, err := s.QuestionRepo.FindVisibleByIDs(schoolID, ids)
	if err != nil {
		return 0
	}
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

type ScheduleRequest struct {
	ExamSubjectID uint      `json:"examSubjectId" binding:"required"`
	ClassID       uint      `json:"classId" binding:"required"`
	StartAt       time.Time `json:"startAt" binding:"required"`
	EndAt         time.Time `json:"endAt" binding:"required"`

	DurationMinutes    *int  `json:"durationMinutes"`
	MaxAttempts        *int  `json:"maxAttempts"`
	RandomizeQuestions *bool `json:"randomizeQuestions"`
	RandomizeAnswers   *bool `json:"randomizeAnswers"`

	PassingScore  *int  `json:"passingScore"`
	ShowResult    *bool `json:"showResult"`
	ShowAnswerKey *bool `json:"showAnswerKey"`
}

func (s *ExamService) validateSchedule(req ScheduleRequest) util.ValidationErrors {
	var errs util.ValidationErrors
	if !req.EndAt.After(req.StartAt) {
		errs = append(errs, "endAt must be after startAt")
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		errs = append(errs, "durationMinutes override must be greater than zero")
	}
	if req.MaxAttempts != nil && *req.MaxAttempts <= 0 {
		errs = append(errs, "maxAttempts override must be greater than zero")
	}
	if req.PassingScore != nil && (*req.PassingScore < 0 || *req.PassingScore > 100) {
		errs = append(errs, "passingScore must be between 0 and 100")
	}
	return errs
}

// CreateSchedule binds a subject to a class and time window. The
// default passing score from configuration is resolved here, once, so
// the stored schedule is self-contained.
func (s *ExamService) CreateSchedule(schoolID, examID uint, req ScheduleRequest) (*model.ExamSchedule, error) {
	exam, err := s.ExamRepo.FindByID(schoolID, examID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if exam.Status == model.ExamCancelled || exam.Status == model.ExamCompleted {
		return nil, util.ErrExamNotEditable
	}
	subject, err := s.ExamRepo.FindSubjectByID(req.ExamSubjectID)
	if err != nil || subject.ExamID != exam.ID {
		return nil, util.ErrNotFound
	}
	if errs := s.validateSchedule(req); errs.Any() {
		return nil, errs
	}

	passing := s.Cfg.Exam.DefaultPassingScore
	if req.PassingScore != nil {
		passing = *req.PassingScore
	}
	schedule := &model.ExamSchedule{
		SchoolID:           schoolID,
		ExamID:             exam.ID,
		ExamSubjectID:      subject.ID,
		ClassID:            req.ClassID,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		Status:             model.ScheduleScheduled,
		DurationMinutes:    req.DurationMinutes,
		MaxAttempts:        req.MaxAttempts,
		RandomizeQuestions: req.RandomizeQuestions,
		RandomizeAnswers:   req.RandomizeAnswers,
		PassingScore:       passing,
		ShowResult:         true,
	}
	if req.ShowResult != nil {
		schedule.ShowResult = *req.ShowResult
	}
	if req.ShowAnswerKey != nil {
		schedule.ShowAnswerKey = *req.ShowAnswerKey
	}

	if err := s.ScheduleRepo.Create(schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ExamService) UpdateSchedule(schoolID, scheduleID uint, req ScheduleRequest) (*model.ExamSchedule, error) {
	schedule, err := s.ScheduleRepo.FindByID(schoolID, scheduleID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if schedule.Status == model.ScheduleFinished || schedule.Status == model.ScheduleCancelled {
		return nil, util.ErrExamNotEditable
	}
	if errs := s.validateSchedule(req); errs.Any() {
		return nil, errs
	}

	schedule.ClassID = req.ClassID
	schedule.StartAt = req.StartAt
	schedule.EndAt = req.EndAt
	schedule.DurationMinutes = req.DurationMinutes
	schedule.MaxAttempts = req.MaxAttempts
	schedule.RandomizeQuestions = req.RandomizeQuestions
	schedule.RandomizeAnswers = req.RandomizeAnswers
	if req.PassingScore != nil {
		schedule.PassingScore = *req.PassingScore
	}
	if req.ShowResult != nil {
		schedule.ShowResult = *req.ShowResult
	}
	if req.ShowAnswerKey != nil {
		schedule.ShowAnswerKey = *req.ShowAnswerKey
	}

	if err := s.ScheduleRepo.Update(schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ExamService) CancelSchedule(schoolID, scheduleID uint) (*model.ExamSchedule, error) {
	schedule, err := s.ScheduleRepo.FindByID(schoolID, scheduleID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if schedule.Status == model.ScheduleFinished {
		return nil, util.ErrInvalidTransition
	}
	schedule.Status = model.ScheduleCancelled
	if err := s.ScheduleRepo.Update(schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ExamService) ListSchedules(schoolID, examID uint) ([]model.ExamSchedule, error) {
	return s.ScheduleRepo.ListByExam(schoolID, examID)
}

func (s *ExamService) ListClassSchedules(schoolID, classID uint) ([]model.ExamSchedule, error) {
	return s.ScheduleRepo.ListByClass(schoolID, classID)
}

// EffectiveSettings is the fully resolved rule set an attempt runs
// under: schedule overrides first, then exam and subject defaults.
type EffectiveSettings struct {
	DurationMinutes    int
	MaxAttempts        int
	RandomizeQuestions bool
	RandomizeAnswers   bool
	PassingScore       int
	ShowResult         bool
	ShowAnswerKey      bool
}

func ResolveSettings(exam *model.Exam, subject *model.ExamSubject, schedule *model.ExamSchedule, defaultMaxAttempts int) EffectiveSettings {
	s := EffectiveSettings{
		DurationMinutes:    subject.DurationMinutes,
		MaxAttempts:        defaultMaxAttempts,
		RandomizeQuestions: exam.RandomizeQuestions,
		RandomizeAnswers:   exam.RandomizeAnswers,
		PassingScore:       schedule.PassingScore,
		ShowResult:         schedule.ShowResult,
		ShowAnswerKey:      schedule.ShowAnswerKey,
	}
	if schedule.DurationMinutes != nil {
		s.DurationMinutes = *schedule.DurationMinutes
	}
	if schedule.MaxAttempts != nil {
		s.MaxAttempts = *schedule.MaxAttempts
	}
	if schedule.RandomizeQuestions != nil {
		s.RandomizeQuestions = *schedule.RandomizeQuestions
	}
	if schedule.RandomizeAnswers != nil {
		s.RandomizeAnswers = *schedule.RandomizeAnswers
	}
	return s
}
