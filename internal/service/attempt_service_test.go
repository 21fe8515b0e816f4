package service

import (
	"errors"
	"testing"
	"time"

	"school_exam_backend/internal/model"
	"school_exam_backend/internal/util"
)

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduleEnd := start.Add(2 * time.Hour)

	tests := []struct {
		name            string
		durationMinutes int
		now             time.Time
		want            int
	}{
		{"fresh attempt", 60, start, 3600},
		{"halfway through", 60, start.Add(30 * time.Minute), 1800},
		{"exactly at deadline", 60, start.Add(60 * time.Minute), 0},
		{"past deadline clamps to zero", 60, start.Add(90 * time.Minute), 0},
		{"schedule end cuts the budget", 180, start.Add(90 * time.Minute), 1800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingSeconds(start, tt.durationMinutes, scheduleEnd, tt.now)
			if got != tt.want {
				t.Errorf("RemainingSeconds = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidatePayload(t *testing.T) {
	choiceSnap := model.QuestionSnapshot{
		Type:    model.SingleChoice,
		Options: []model.QuestionOption{{Key: "A"}, {Key: "B"}},
	}
	fillSnap := model.QuestionSnapshot{Type: model.FillBlank}
	essaySnap := model.QuestionSnapshot{Type: model.Essay}
	matchSnap := model.QuestionSnapshot{Type: model.Matching}

	tests := []struct {
		name    string
		snap    model.QuestionSnapshot
		payload model.AnswerPayload
		wantErr bool
	}{
		{"choice with listed key", choiceSnap, model.AnswerPayload{Key: "A"}, false},
		{"choice with unlisted key", choiceSnap, model.AnswerPayload{Key: "Z"}, true},
		{"choice with no key", choiceSnap, model.AnswerPayload{}, true},
		{"fill blank with text", fillSnap, model.AnswerPayload{Texts: []string{"Jakarta"}}, false},
		{"fill blank whitespace only", fillSnap, model.AnswerPayload{Texts: []string{"   "}}, true},
		{"essay with text", essaySnap, model.AnswerPayload{Texts: []string{"an argument"}}, false},
		{"essay empty", essaySnap, model.AnswerPayload{}, true},
		{"matching with pairs", matchSnap, model.AnswerPayload{Mapping: map[string]string{"1": "a"}}, false},
		{"matching empty", matchSnap, model.AnswerPayload{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePayload(tt.snap, tt.payload)
			if tt.wantErr && !errors.Is(err, util.ErrInvalidAnswer) {
				t.Errorf("expected ErrInvalidAnswer, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected valid payload, got %v", err)
			}
		})
	}
}

func TestReorderOptions(t *testing.T) {
	opts := []model.QuestionOption{
		{Key: "A", Text: "first"},
		{Key: "B", Text: "second"},
		{Key: "C", Text: "third"},
	}

	got := reorderOptions(opts, []string{"C", "A", "B"})
	if len(got) != 3 || got[0].Key != "C" || got[1].Key != "A" || got[2].Key != "B" {
		t.Errorf("unexpected reordering: %v", got)
	}

	// A key added to the bank after the attempt started is not in the
	// frozen order and must not appear.
	opts = append(opts, model.QuestionOption{Key: "D", Text: "late addition"})
	got = reorderOptions(opts, []string{"C", "A", "B"})
	if len(got) != 3 {
		t.Errorf("late option leaked into the sheet: %v", got)
	}

	// No stored order means the authoring order stands.
	got = reorderOptions(opts, nil)
	if len(got) != 4 || got[0].Key != "A" {
		t.Errorf("expected authoring order, got %v", got)
	}
}

func TestOrderByIDs(t *testing.T) {
	q1 := model.Question{}
	q1.ID = 1
	q2 := model.Question{}
	q2.ID = 2
	q3 := model.Question{}
	q3.ID = 3

	got := orderByIDs([]model.Question{q2, q3, q1}, []uint{3, 1, 2})
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Errorf("unexpected order: %v", idsOf(got))
	}

	// Ids without a loaded question are skipped.
	got = orderByIDs([]model.Question{q1}, []uint{2, 1})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected only the loaded question, got %v", idsOf(got))
	}
}

func idsOf(questions []model.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func TestResolveSettings(t *testing.T) {
	exam := &model.Exam{RandomizeQuestions: true, RandomizeAnswers: false}
	subject := &model.ExamSubject{DurationMinutes: 90, TotalScore: 100}
	schedule := &model.ExamSchedule{PassingScore: 75, ShowResult: true}

	s := ResolveSettings(exam, subject, schedule, 1)
	if s.DurationMinutes != 90 || s.MaxAttempts != 1 || !s.RandomizeQuestions || s.RandomizeAnswers {
		t.Errorf("inherited settings wrong: %+v", s)
	}
	if s.PassingScore != 75 {
		t.Errorf("expected schedule passing score 75, got %d", s.PassingScore)
	}

	duration, attempts := 45, 3
	noShuffle := false
	schedule.DurationMinutes = &duration
	schedule.MaxAttempts = &attempts
	schedule.RandomizeQuestions = &noShuffle

	s = ResolveSettings(exam, subject, schedule, 1)
	if s.DurationMinutes != 45 || s.MaxAttempts != 3 || s.RandomizeQuestions {
		t.Errorf("overrides not applied: %+v", s)
	}
}

func snapshotAnswer(t *testing.T, snap model.QuestionSnapshot, payload model.AnswerPayload, autoSaved bool) model.ExamAnswer {
	t.Helper()
	var a model.ExamAnswer
	if err := a.SetSnapshot(snap); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}
	if err := a.SetPayload(payload); err != nil {
		t.Fatalf("set payload: %v", err)
	}
	a.IsAutoSaved = autoSaved
	return a
}

func TestTimeoutIsNoOpOnClosedAttempt(t *testing.T) {
	// No repositories are wired: a second timeout on a terminal
	// attempt must return before touching storage at all.
	s := &AttemptService{}

	for _, status := range []model.AttemptStatus{
		model.AttemptCompleted, model.AttemptAbandoned, model.AttemptTimeout,
	} {
		t.Run(string(status), func(t *testing.T) {
			attempt := &model.ExamAttempt{
				Status:       status,
				Score:        42,
				CorrectCount: 3,
			}
			ctx := &attemptContext{Attempt: attempt}

			for i := 0; i < 2; i++ {
				if err := s.timeoutIfExpired(ctx, time.Now()); err != nil {
					t.Fatalf("pass %d: %v", i, err)
				}
			}
			if attempt.Status != status || attempt.Score != 42 || attempt.CorrectCount != 3 {
				t.Errorf("terminal attempt mutated: %+v", attempt)
			}
			if attempt.SubmittedAt != nil {
				t.Error("terminal attempt got a new submission time")
			}
		})
	}
}

func TestTimeoutIsNoOpWithTimeLeft(t *testing.T) {
	s := &AttemptService{}
	now := time.Now()
	ctx := &attemptContext{
		Attempt:  &model.ExamAttempt{Status: model.AttemptInProgress, StartedAt: now},
		Schedule: &model.ExamSchedule{EndAt: now.Add(2 * time.Hour)},
		Settings: EffectiveSettings{DurationMinutes: 60},
	}

	if err := s.timeoutIfExpired(ctx, now.Add(10*time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Attempt.Status != model.AttemptInProgress {
		t.Errorf("attempt with time left was closed: %s", ctx.Attempt.Status)
	}
}

func TestCloseAttemptGradesDraftsAndClearsFlags(t *testing.T) {
	s := &AttemptService{Scorer: &Scorer{}}

	choice := model.QuestionSnapshot{
		Type:          model.SingleChoice,
		Options:       []model.QuestionOption{{Key: "A", Text: "yes"}, {Key: "B", Text: "no"}},
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerKey, Key: "A"},
		Points:        5,
	}
	essay := model.QuestionSnapshot{
		Type:   model.Essay,
		Points: 10,
	}

	answers := []model.ExamAnswer{
		snapshotAnswer(t, choice, model.AnswerPayload{Key: "A"}, true),
		snapshotAnswer(t, essay, model.AnswerPayload{Texts: []string{"my essay"}}, true),
	}

	started := time.Now().Add(-30 * time.Minute)
	closedAt := time.Now()
	attempt := &model.ExamAttempt{Status: model.AttemptInProgress, StartedAt: started}

	if err := s.closeAttempt(attempt, answers, model.AttemptCompleted, closedAt); err != nil {
		t.Fatalf("close: %v", err)
	}

	if answers[0].IsCorrect == nil || !*answers[0].IsCorrect || answers[0].PointsAwarded != 5 {
		t.Errorf("auto-saved choice draft not graded at close: %+v", answers[0])
	}
	if answers[1].IsCorrect != nil {
		t.Errorf("essay must stay ungraded, got %+v", answers[1].IsCorrect)
	}
	for i := range answers {
		if answers[i].IsAutoSaved {
			t.Errorf("answer %d kept its draft flag after close", i)
		}
	}

	if attempt.Status != model.AttemptCompleted {
		t.Errorf("status = %s, want completed", attempt.Status)
	}
	if attempt.SubmittedAt == nil || !attempt.SubmittedAt.Equal(closedAt) {
		t.Errorf("submitted at = %v, want %v", attempt.SubmittedAt, closedAt)
	}
	if attempt.Score != 5 || attempt.CorrectCount != 1 {
		t.Errorf("score = %d/%d, want 5/1", attempt.Score, attempt.CorrectCount)
	}

	if got := countPendingManual(answers); got != 1 {
		t.Errorf("pending manual = %d, want 1 (the essay)", got)
	}
}

func TestCloseAttemptPastDeadlineKeepsGivenStatus(t *testing.T) {
	// An instructor close applies completed even when the clock ran
	// out long ago; only the timeout path writes timeout.
	s := &AttemptService{Scorer: &Scorer{}}
	attempt := &model.ExamAttempt{
		Status:    model.AttemptInProgress,
		StartedAt: time.Now().Add(-3 * time.Hour),
	}

	if err := s.closeAttempt(attempt, nil, model.AttemptCompleted, time.Now()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if attempt.Status != model.AttemptCompleted {
		t.Errorf("status = %s, want completed", attempt.Status)
	}
	if attempt.TotalTimeSeconds < 3*60*60 {
		t.Errorf("total time = %ds, want the full elapsed span", attempt.TotalTimeSeconds)
	}
}

func TestCountPendingManualIgnoresOpenDrafts(t *testing.T) {
	essayClosed := model.ExamAnswer{IsCorrect: nil, IsAutoSaved: false}
	openDraft := model.ExamAnswer{IsCorrect: nil, IsAutoSaved: true}
	graded := true
	done := model.ExamAnswer{IsCorrect: &graded, PointsAwarded: 5}

	if got := countPendingManual([]model.ExamAnswer{essayClosed, openDraft, done}); got != 1 {
		t.Errorf("pending manual = %d, want 1", got)
	}
}
