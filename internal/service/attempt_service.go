package service

import (
	"strings"
	"time"

	"school_exam_backend/internal/config"
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/repository"
	"school_exam_backend/internal/util"
	"school_exam_backend/pkg/logger"
	"school_exam_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// AttemptService runs the student-facing attempt lifecycle: start,
// answer, submit, abandon. Timeouts are evaluated lazily on every read
// of an open attempt; there is no background scheduler.
type AttemptService struct {
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
	ScheduleRepo *repository.ScheduleRepository
	ExamRepo     *repository.ExamRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
	Randomizer   *Randomizer
	Scorer       *Scorer
	Cfg          *config.Config
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	scheduleRepo *repository.ScheduleRepository,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	randomizer *Randomizer,
	scorer *Scorer,
	cfg *config.Config,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
		ScheduleRepo: scheduleRepo,
		ExamRepo:     examRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
		Randomizer:   randomizer,
		Scorer:       scorer,
		Cfg:          cfg,
	}
}

// attemptContext bundles everything a lifecycle operation needs about
// one attempt: the schedule it belongs to and the resolved settings.
type attemptContext struct {
	Attempt  *model.ExamAttempt
	Schedule *model.ExamSchedule
	Subject  *model.ExamSubject
	Settings EffectiveSettings
}

func (s *AttemptService) loadContext(schoolID uint, attemptID string) (*attemptContext, error) {
	attempt, err := s.AttemptRepo.FindByID(schoolID, attemptID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	schedule, err := s.ScheduleRepo.FindByID(schoolID, attempt.ScheduleID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	subject, err := s.ExamRepo.FindSubjectByID(schedule.ExamSubjectID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	exam, err := s.ExamRepo.FindByID(schoolID, schedule.ExamID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	return &attemptContext{
		Attempt:  attempt,
		Schedule: schedule,
		Subject:  subject,
		Settings: ResolveSettings(exam, subject, schedule, s.Cfg.Exam.DefaultMaxAttempts),
	}, nil
}

// RemainingSeconds computes the time left on an open attempt at now.
// The deadline is the earlier of the attempt's own duration budget and
// the schedule's hard end. Never negative.
func RemainingSeconds(startedAt time.Time, durationMinutes int, scheduleEnd time.Time, now time.Time) int {
	deadline := startedAt.Add(time.Duration(durationMinutes) * time.Minute)
	if scheduleEnd.Before(deadline) {
		deadline = scheduleEnd
	}
	remaining := int(deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StartAttempt opens a new attempt for a student on a schedule. The
// question and option order are rolled once here and frozen on the
// attempt row.
func (s *AttemptService) StartAttempt(schoolID, studentID, scheduleID uint) (*model.ExamAttempt, []AttemptQuestionView, error) {
	schedule, err := s.ScheduleRepo.FindByID(schoolID, scheduleID)
	if err != nil {
		return nil, nil, util.ErrNotFound
	}

	now := time.Now()
	if !schedule.AcceptsAttempts(now) {
		return nil, nil, util.ErrScheduleNotAvailable
	}

	student, err := s.UserRepo.FindByID(studentID)
	if err != nil || student.SchoolID != schoolID {
		return nil, nil, util.ErrNotFound
	}
	if student.ClassID != schedule.ClassID {
		return nil, nil, util.ErrScheduleNotAvailable
	}

	subject, err := s.ExamRepo.FindSubjectByID(schedule.ExamSubjectID)
	if err != nil {
		return nil, nil, util.ErrNotFound
	}
	exam, err := s.ExamRepo.FindByID(schoolID, schedule.ExamID)
	if err != nil {
		return nil, nil, util.ErrNotFound
	}
	settings := ResolveSettings(exam, subject, schedule, s.Cfg.Exam.DefaultMaxAttempts)

	used, err := s.AttemptRepo.CountTowardsLimit(schedule.ID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if used >= int64(settings.MaxAttempts) {
		return nil, nil, util.ErrAttemptLimitExceeded
	}

	ids, err := subject.QuestionIDList()
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.QuestionRepo.FindVisibleByIDs(schoolID, ids)
	if err != nil {
		return nil, nil, err
	}
	questions = orderByIDs(questions, ids)

	order, err := s.Randomizer.Shuffle(questions, settings.RandomizeQuestions, settings.RandomizeAnswers)
	if err != nil {
		return nil, nil, err
	}

	attempt := &model.ExamAttempt{
		SchoolID:   schoolID,
		ScheduleID: schedule.ID,
		StudentID:  studentID,
		Status:     model.AttemptInProgress,
		StartedAt:  now,
	}
	if err := attempt.SetSnapshot(order.QuestionOrder, order.OptionOrder); err != nil {
		return nil, nil, err
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, nil, err
	}

	monitoring.AttemptsStarted.Inc()
	logger.Log.Info("attempt started",
		zap.String("attemptId", attempt.ID),
		zap.Uint("scheduleId", schedule.ID),
		zap.Uint("studentId", studentID))

	views, err := s.buildQuestionViews(attempt, questions, nil, false)
	if err != nil {
		return nil, nil, err
	}
	return attempt, views, nil
}

// orderByIDs restores the authoring order FindVisibleByIDs loses.
func orderByIDs(questions []model.Question, ids []uint) []model.Question {
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// loadOpenAttempt fetches an attempt for a write operation, applying
// the lazy timeout first. Returns ErrAttemptNotOpen once terminal.
func (s *AttemptService) loadOpenAttempt(schoolID, studentID uint, attemptID string) (*attemptContext, error) {
	ctx, err := s.loadContext(schoolID, attemptID)
	if err != nil {
		return nil, err
	}
	if ctx.Attempt.StudentID != studentID {
		return nil, util.ErrNotFound
	}

	if ctx.Attempt.Status.IsOpen() {
		if err := s.timeoutIfExpired(ctx, time.Now()); err != nil {
			return nil, err
		}
	}
	if !ctx.Attempt.Status.IsOpen() {
		return nil, util.ErrAttemptNotOpen
	}
	return ctx, nil
}

// timeoutIfExpired closes an open attempt whose deadline passed. Saved
// answers keep their grades; auto-saved drafts are graded as they
// stand. Idempotent.
func (s *AttemptService) timeoutIfExpired(ctx *attemptContext, now time.Time) error {
	if !ctx.Attempt.Status.IsOpen() {
		return nil
	}
	if RemainingSeconds(ctx.Attempt.StartedAt, ctx.Settings.DurationMinutes, ctx.Schedule.EndAt, now) > 0 {
		return nil
	}

	// Close at the moment the time actually ran out, not at the read
	// that observed it.
	deadline := ctx.Attempt.StartedAt.Add(time.Duration(ctx.Settings.DurationMinutes) * time.Minute)
	if ctx.Schedule.EndAt.Before(deadline) {
		deadline = ctx.Schedule.EndAt
	}
	return s.finishAttempt(ctx, model.AttemptTimeout, deadline)
}

// closeAttempt grades every ungraded auto-gradable row from its frozen
// snapshot, clears the draft flag on all rows so remaining manual work
// is countable, and stamps the terminal state. Pure over the loaded
// rows; finishAttempt persists them.
func (s *AttemptService) closeAttempt(attempt *model.ExamAttempt, answers []model.ExamAnswer, status model.AttemptStatus, at time.Time) error {
	for i := range answers {
		a := &answers[i]
		snap, err := a.Snapshot()
		if err != nil {
			return err
		}
		if snap.Type.AutoGradable() && a.IsCorrect == nil {
			payload, err := a.Payload()
			if err != nil {
				return err
			}
			a.IsCorrect, a.PointsAwarded = s.Scorer.GradeOne(snap, payload)
		}
		a.IsAutoSaved = false
	}

	attempt.Status = status
	attempt.SubmittedAt = &at
	attempt.TotalTimeSeconds = int(at.Sub(attempt.StartedAt).Seconds())
	attempt.Score, attempt.CorrectCount = Aggregate(answers)
	return nil
}

type AnswerRequest struct {
	QuestionID       uint                `json:"questionId" binding:"required"`
	Answer           model.AnswerPayload `json:"answer"`
	TimeSpentSeconds int                 `json:"timeSpentSeconds"`
	AutoSave         bool                `json:"autoSave"`
}

// validatePayload checks the submitted shape against the question as
// it was presented. Returns ErrInvalidAnswer on any mismatch.
func validatePayload(snap model.QuestionSnapshot, payload model.AnswerPayload) error {
	switch snap.Type {
	case model.SingleChoice, model.TrueFalse:
		if payload.Key == "" {
			return util.ErrInvalidAnswer
		}
		for _, o := range snap.Options {
			if o.Key == payload.Key {
				return nil
			}
		}
		return util.ErrInvalidAnswer

	case model.FillBlank, model.Essay:
		for _, t := range payload.Texts {
			if strings.TrimSpace(t) != "" {
				return nil
			}
		}
		return util.ErrInvalidAnswer

	case model.Matching:
		if len(payload.Mapping) == 0 {
			return util.ErrInvalidAnswer
		}
		return nil
	}
	return util.ErrInvalidAnswer
}

// SubmitAnswer writes the single answer row for (attempt, question).
// Re-submission overwrites in place. Auto-save stores the draft only;
// grading waits until final submission.
func (s *AttemptService) SubmitAnswer(schoolID, studentID uint, attemptID string, req AnswerRequest) (*model.ExamAnswer, error) {
	ctx, err := s.loadOpenAttempt(schoolID, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	order, err := ctx.Attempt.QuestionOrderList()
	if err != nil {
		return nil, err
	}
	if !containsID(order, req.QuestionID) {
		return nil, util.ErrInvalidAnswer
	}

	question, err := s.QuestionRepo.FindByID(schoolID, req.QuestionID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	// Reuse the snapshot from a previous submission of the same
	// question so a bank edit mid-attempt cannot change the grading
	// basis.
	var snap model.QuestionSnapshot
	if prev, err := s.AnswerRepo.FindByAttemptAndQuestion(ctx.Attempt.ID, req.QuestionID); err == nil {
		snap, err = prev.Snapshot()
		if err != nil {
			return nil, err
		}
	} else {
		snap, err = model.SnapshotOf(question)
		if err != nil {
			return nil, err
		}
	}

	if err := validatePayload(snap, req.Answer); err != nil {
		return nil, err
	}

	answer := &model.ExamAnswer{
		SchoolID:         schoolID,
		AttemptID:        ctx.Attempt.ID,
		QuestionID:       req.QuestionID,
		TimeSpentSeconds: req.TimeSpentSeconds,
		IsAutoSaved:      req.AutoSave,
		AnsweredAt:       time.Now(),
	}
	if err := answer.SetPayload(req.Answer); err != nil {
		return nil, err
	}
	if err := answer.SetSnapshot(snap); err != nil {
		return nil, err
	}
	if !req.AutoSave && snap.Type.AutoGradable() {
		answer.IsCorrect, answer.PointsAwarded = s.Scorer.GradeOne(snap, req.Answer)
	}

	if err := s.AnswerRepo.Upsert(answer); err != nil {
		return nil, err
	}

	if ctx.Attempt.Status == model.AttemptStarted {
		ctx.Attempt.Status = model.AttemptInProgress
		if err := s.AttemptRepo.Update(ctx.Attempt); err != nil {
			return nil, err
		}
	}

	monitoring.AnswersSubmitted.WithLabelValues(boolLabel(req.AutoSave)).Inc()
	return answer, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SubmitAttempt closes the attempt: grades any remaining drafts,
// aggregates the score and stamps the submission time.
func (s *AttemptService) SubmitAttempt(schoolID, studentID uint, attemptID string) (*model.ExamAttempt, error) {
	ctx, err := s.loadOpenAttempt(schoolID, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	if err := s.finishAttempt(ctx, model.AttemptCompleted, time.Now()); err != nil {
		return nil, err
	}
	return ctx.Attempt, nil
}

func (s *AttemptService) finishAttempt(ctx *attemptContext, status model.AttemptStatus, at time.Time) error {
	answers, err := s.AnswerRepo.ListByAttempt(ctx.Attempt.ID)
	if err != nil {
		return err
	}
	if err := s.closeAttempt(ctx.Attempt, answers, status, at); err != nil {
		return err
	}
	for i := range answers {
		if err := s.AnswerRepo.Update(&answers[i]); err != nil {
			return err
		}
	}
	if err := s.AttemptRepo.Update(ctx.Attempt); err != nil {
		return err
	}

	monitoring.AttemptsFinished.WithLabelValues(string(status)).Inc()
	logger.Log.Info("attempt finished",
		zap.String("attemptId", ctx.Attempt.ID),
		zap.String("status", string(status)),
		zap.Int("score", ctx.Attempt.Score))
	return nil
}

// AbandonAttempt voids an open attempt. Abandoned attempts do not
// count towards the attempt limit and carry no score.
func (s *AttemptService) AbandonAttempt(schoolID, studentID uint, attemptID string) (*model.ExamAttempt, error) {
	ctx, err := s.loadOpenAttempt(schoolID, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ctx.Attempt.Status = model.AttemptAbandoned
	ctx.Attempt.SubmittedAt = &now
	ctx.Attempt.TotalTimeSeconds = int(now.Sub(ctx.Attempt.StartedAt).Seconds())
	ctx.Attempt.Score = 0
	ctx.Attempt.CorrectCount = 0
	if err := s.AttemptRepo.Update(ctx.Attempt); err != nil {
		return nil, err
	}

	monitoring.AttemptsFinished.WithLabelValues(string(model.AttemptAbandoned)).Inc()
	return ctx.Attempt, nil
}

// ForceComplete lets an instructor close a student's open attempt with
// whatever answers are present. The attempt closes as completed even
// past its deadline, so essay exams can be wrapped up after the
// window without flipping to timeout.
func (s *AttemptService) ForceComplete(schoolID uint, attemptID string) (*model.ExamAttempt, error) {
	ctx, err := s.loadContext(schoolID, attemptID)
	if err != nil {
		return nil, err
	}
	if !ctx.Attempt.Status.IsOpen() {
		return ctx.Attempt, nil
	}
	if err := s.finishAttempt(ctx, model.AttemptCompleted, time.Now()); err != nil {
		return nil, err
	}
	return ctx.Attempt, nil
}

type RemainingTime struct {
	AttemptID        string              `json:"attemptId"`
	Status           model.AttemptStatus `json:"status"`
	RemainingSeconds int                 `json:"remainingSeconds"`
}

// GetRemainingTime is the polling endpoint for the exam timer. Reading
// the clock on an expired attempt closes it, so the first poll after
// the deadline observes the timeout.
func (s *AttemptService) GetRemainingTime(schoolID, studentID uint, attemptID string) (*RemainingTime, error) {
	ctx, err := s.loadContext(schoolID, attemptID)
	if err != nil {
		return nil, err
	}
	if ctx.Attempt.StudentID != studentID {
		return nil, util.ErrNotFound
	}

	now := time.Now()
	if err := s.timeoutIfExpired(ctx, now); err != nil {
		return nil, err
	}

	rt := &RemainingTime{AttemptID: ctx.Attempt.ID, Status: ctx.Attempt.Status}
	if ctx.Attempt.Status.IsOpen() {
		rt.RemainingSeconds = RemainingSeconds(ctx.Attempt.StartedAt, ctx.Settings.DurationMinutes, ctx.Schedule.EndAt, now)
	}
	return rt, nil
}

// AttemptSummary is the result view of one attempt. Score fields are
// zeroed when the schedule hides results from students.
type AttemptSummary struct {
	Attempt       *model.ExamAttempt `json:"attempt"`
	TotalScore    int                `json:"totalScore"`
	Percentage    float64            `json:"percentage"`
	LetterGrade   string             `json:"letterGrade"`
	Passed        bool               `json:"passed"`
	PassingScore  int                `json:"passingScore"`
	PendingManual int                `json:"pendingManual"`
	ResultVisible bool               `json:"resultVisible"`
}

// GetSummary builds the result view. asStudent applies the schedule's
// ShowResult policy; instructors always see the full summary.
func (s *AttemptService) GetSummary(schoolID, requesterID uint, attemptID string, asStudent bool) (*AttemptSummary, error) {
	ctx, err := s.loadContext(schoolID, attemptID)
	if err != nil {
		return nil, err
	}
	if asStudent && ctx.Attempt.StudentID != requesterID {
		return nil, util.ErrNotFound
	}
	if err := s.timeoutIfExpired(ctx, time.Now()); err != nil {
		return nil, err
	}

	answers, err := s.AnswerRepo.ListByAttempt(ctx.Attempt.ID)
	if err != nil {
		return nil, err
	}
	pending := countPendingManual(answers)

	summary := &AttemptSummary{
		Attempt:       ctx.Attempt,
		TotalScore:    ctx.Subject.TotalScore,
		PassingScore:  ctx.Schedule.PassingScore,
		PendingManual: pending,
		ResultVisible: true,
	}
	summary.Percentage = Percentage(ctx.Attempt.Score, ctx.Subject.TotalScore)
	summary.LetterGrade = LetterGrade(summary.Percentage)
	summary.Passed = summary.Percentage >= float64(ctx.Schedule.PassingScore)

	if asStudent && !ctx.Settings.ShowResult {
		summary.ResultVisible = false
		summary.Percentage = 0
		summary.LetterGrade = ""
		summary.Passed = false
		summary.Attempt.Score = 0
		summary.Attempt.CorrectCount = 0
	}
	return summary, nil
}

// countPendingManual counts rows still awaiting an instructor grade.
// Drafts on an open attempt keep IsAutoSaved set and are not pending
// yet; closeAttempt clears the flag on every row, essays included, so
// a closed attempt's ungraded essays always count.
func countPendingManual(answers []model.ExamAnswer) int {
	pending := 0
	for i := range answers {
		if answers[i].IsCorrect == nil && !answers[i].IsAutoSaved {
			pending++
		}
	}
	return pending
}

func (s *AttemptService) ListMyAttempts(schoolID, studentID uint, page, limit int) ([]model.ExamAttempt, int64, error) {
	return s.AttemptRepo.ListByStudent(schoolID, studentID, page, limit)
}

// AttemptQuestionView is one question exactly as the attempt presented
// it: stored order, stored option order, the student's saved answer.
// The answer key appears only on closed attempts when the schedule
// allows it.
type AttemptQuestionView struct {
	QuestionID    uint                   `json:"questionId"`
	Type          model.QuestionType     `json:"type"`
	Content       string                 `json:"content"`
	AttachmentURL string                 `json:"attachmentUrl,omitempty"`
	Options       []model.QuestionOption `json:"options,omitempty"`
	Points        int                    `json:"points"`
	GroupID       *uint                  `json:"groupId,omitempty"`
	Answer        *model.AnswerPayload   `json:"answer,omitempty"`
	IsCorrect     *bool                  `json:"isCorrect,omitempty"`
	PointsAwarded *int                   `json:"pointsAwarded,omitempty"`
	CorrectAnswer *model.CorrectAnswer   `json:"correctAnswer,omitempty"`
	Explanation   string                 `json:"explanation,omitempty"`
}

// GetQuestions replays the attempt's question sheet. Works for open
// attempts (resume) and closed ones (review).
func (s *AttemptService) GetQuestions(schoolID, studentID uint, attemptID string) ([]AttemptQuestionView, error) {
	ctx, err := s.loadContext(schoolID, attemptID)
	if err != nil {
		return nil, err
	}
	if ctx.Attempt.StudentID != studentID {
		return nil, util.ErrNotFound
	}
	if err := s.timeoutIfExpired(ctx, time.Now()); err != nil {
		return nil, err
	}

	order, err := ctx.Attempt.QuestionOrderList()
	if err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.FindVisibleByIDs(schoolID, order)
	if err != nil {
		return nil, err
	}
	questions = orderByIDs(questions, order)

	answers, err := s.AnswerRepo.ListByAttempt(ctx.Attempt.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uint]*model.ExamAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	revealKey := ctx.Attempt.Status.IsTerminal() && ctx.Settings.ShowAnswerKey
	return s.buildQuestionViews(ctx.Attempt, questions, byQuestion, revealKey)
}

func (s *AttemptService) buildQuestionViews(attempt *model.ExamAttempt, questions []model.Question, answers map[uint]*model.ExamAnswer, revealKey bool) ([]AttemptQuestionView, error) {
	optionOrder, err := attempt.OptionOrderMap()
	if err != nil {
		return nil, err
	}

	views := make([]AttemptQuestionView, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		opts, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		view := AttemptQuestionView{
			QuestionID:    q.ID,
			Type:          q.Type,
			Content:       q.Content,
			AttachmentURL: q.AttachmentURL,
			Options:       reorderOptions(opts, optionOrder[q.ID]),
			Points:        q.Points,
			GroupID:       q.GroupID,
		}
		if a, ok := answers[q.ID]; ok {
			payload, err := a.Payload()
			if err != nil {
				return nil, err
			}
			view.Answer = &payload
			if a.IsCorrect != nil {
				view.IsCorrect = a.IsCorrect
				awarded := a.PointsAwarded
				view.PointsAwarded = &awarded
			}
		}
		if revealKey {
			ca, err := q.Correct()
			if err != nil {
				return nil, err
			}
			view.CorrectAnswer = &ca
			view.Explanation = q.Explanation
		}
		views = append(views, view)
	}
	return views, nil
}

// reorderOptions applies the attempt's frozen option order. Options
// missing from the order (added to the bank later) are dropped, so the
// sheet always matches what the student originally saw.
func reorderOptions(opts []model.QuestionOption, order []string) []model.QuestionOption {
	if len(order) == 0 {
		return opts
	}
	byKey := make(map[string]model.QuestionOption, len(opts))
	for _, o := range opts {
		byKey[o.Key] = o
	}
	out := make([]model.QuestionOption, 0, len(order))
	for _, key := range order {
		if o, ok := byKey[key]; ok {
			out = append(out, o)
		}
	}
	return out
}
