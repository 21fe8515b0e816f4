package repository

import (
	"testing"
)

func TestAnswerConflictKeepsOneRowPerAttemptQuestion(t *testing.T) {
	c := answerConflict()

	if len(c.Columns) != 2 || c.Columns[0].Name != "attempt_id" || c.Columns[1].Name != "question_id" {
		t.Fatalf("conflict key = %+v, want (attempt_id, question_id)", c.Columns)
	}

	assigned := map[string]bool{}
	for _, a := range c.DoUpdates {
		assigned[a.Column.Name] = true
	}

	// A repeat write for the same question must replace the payload,
	// snapshot and grading of the existing row.
	for _, col := range []string{
		"answer", "question", "is_correct", "points_awarded",
		"time_spent_seconds", "is_auto_saved", "answered_at",
	} {
		if !assigned[col] {
			t.Errorf("repeat write must update %s in place", col)
		}
	}

	// It must never rewrite the key or the row identity, or a second
	// row could appear for the same (attempt, question).
	for _, col := range []string{"id", "attempt_id", "question_id", "created_at"} {
		if assigned[col] {
			t.Errorf("repeat write must not touch %s", col)
		}
	}
}
