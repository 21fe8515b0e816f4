package model

import (
	"testing"
	"time"
)

func TestExamStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ExamStatus
		allowed  bool
	}{
		{ExamDraft, ExamScheduled, true},
		{ExamDraft, ExamCancelled, true},
		{ExamDraft, ExamOngoing, false},
		{ExamScheduled, ExamOngoing, true},
		{ExamOngoing, ExamCompleted, true},
		{ExamCompleted, ExamOngoing, false},
		{ExamCancelled, ExamDraft, false},
		{ExamCompleted, ExamCancelled, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestAttemptStatusHelpers(t *testing.T) {
	open := []AttemptStatus{AttemptStarted, AttemptInProgress}
	for _, s := range open {
		if !s.IsOpen() || s.IsTerminal() {
			t.Errorf("%s should be open and not terminal", s)
		}
	}

	terminal := []AttemptStatus{AttemptCompleted, AttemptAbandoned, AttemptTimeout}
	for _, s := range terminal {
		if s.IsOpen() || !s.IsTerminal() {
			t.Errorf("%s should be terminal and not open", s)
		}
	}
}

func TestScheduleAcceptsAttempts(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	s := &ExamSchedule{Status: ScheduleScheduled, StartAt: start, EndAt: end}

	if s.AcceptsAttempts(start.Add(-time.Minute)) {
		t.Error("accepted an attempt before the window")
	}
	if !s.AcceptsAttempts(start) {
		t.Error("rejected an attempt at the window start")
	}
	if !s.AcceptsAttempts(end) {
		t.Error("rejected an attempt at the window end")
	}
	if s.AcceptsAttempts(end.Add(time.Second)) {
		t.Error("accepted an attempt after the window")
	}

	s.Status = ScheduleCancelled
	if s.AcceptsAttempts(start.Add(time.Minute)) {
		t.Error("accepted an attempt on a cancelled schedule")
	}
}

func TestQuestionVisibility(t *testing.T) {
	q := &Question{SchoolID: 1, Visibility: VisibilityPrivate}
	if !q.VisibleTo(1) {
		t.Error("owner school cannot see its own question")
	}
	if q.VisibleTo(2) {
		t.Error("private question visible to another school")
	}

	q.Visibility = VisibilityShared
	if !q.VisibleTo(2) {
		t.Error("shared question hidden from another school")
	}
}
