package service

import (
	"testing"

	"school_exam_backend/internal/model"
)

func TestGradeOneSingleChoice(t *testing.T) {
	snap := model.QuestionSnapshot{
		Type:          model.SingleChoice,
		Options:       []model.QuestionOption{{Key: "A"}, {Key: "B"}, {Key: "C"}},
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerKey, Key: "B"},
		Points:        5,
	}
	scorer := &Scorer{}

	tests := []struct {
		name        string
		key         string
		wantCorrect bool
		wantPoints  int
	}{
		{"right key", "B", true, 5},
		{"wrong key", "A", false, 0},
		{"empty key", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, points := scorer.GradeOne(snap, model.AnswerPayload{Key: tt.key})
			if correct == nil {
				t.Fatal("expected a graded result, got pending")
			}
			if *correct != tt.wantCorrect || points != tt.wantPoints {
				t.Errorf("got correct=%v points=%d, want correct=%v points=%d", *correct, points, tt.wantCorrect, tt.wantPoints)
			}
		})
	}
}

func TestGradeOneFillBlankIsLenient(t *testing.T) {
	snap := model.QuestionSnapshot{
		Type:          model.FillBlank,
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerSet, Accepted: []string{"Jakarta", "DKI Jakarta"}},
		Points:        4,
	}
	scorer := &Scorer{}

	tests := []struct {
		name        string
		texts       []string
		wantCorrect bool
	}{
		{"exact match", []string{"Jakarta"}, true},
		{"lowercase", []string{"jakarta"}, true},
		{"padded and mixed case", []string{"  JAKARTA  "}, true},
		{"second accepted form", []string{"dki jakarta"}, true},
		{"one of several blanks matches", []string{"Bandung", "Jakarta"}, true},
		{"no match", []string{"Surabaya"}, false},
		{"empty submission", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, points := scorer.GradeOne(snap, model.AnswerPayload{Texts: tt.texts})
			if correct == nil {
				t.Fatal("expected a graded result, got pending")
			}
			if *correct != tt.wantCorrect {
				t.Errorf("got correct=%v, want %v", *correct, tt.wantCorrect)
			}
			if tt.wantCorrect && points != 4 {
				t.Errorf("expected full points, got %d", points)
			}
		})
	}
}

func TestGradeOneMatching(t *testing.T) {
	snap := model.QuestionSnapshot{
		Type:          model.Matching,
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerMapping, Mapping: map[string]string{"1": "a", "2": "b"}},
		Points:        6,
	}
	scorer := &Scorer{}

	tests := []struct {
		name        string
		mapping     map[string]string
		wantCorrect bool
	}{
		{"complete match", map[string]string{"1": "a", "2": "b"}, true},
		{"one pair wrong", map[string]string{"1": "a", "2": "c"}, false},
		{"partial submission", map[string]string{"1": "a"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, _ := scorer.GradeOne(snap, model.AnswerPayload{Mapping: tt.mapping})
			if correct == nil {
				t.Fatal("expected a graded result, got pending")
			}
			if *correct != tt.wantCorrect {
				t.Errorf("got correct=%v, want %v", *correct, tt.wantCorrect)
			}
		})
	}
}

func TestGradeOneEssayStaysPending(t *testing.T) {
	snap := model.QuestionSnapshot{Type: model.Essay, CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerNone}, Points: 10}
	scorer := &Scorer{}

	correct, points := scorer.GradeOne(snap, model.AnswerPayload{Texts: []string{"free text"}})
	if correct != nil {
		t.Errorf("essay grading should stay pending, got %v", *correct)
	}
	if points != 0 {
		t.Errorf("pending answer awarded %d points", points)
	}
}

func TestAggregate(t *testing.T) {
	yes, no := true, false
	answers := []model.ExamAnswer{
		{IsCorrect: &yes, PointsAwarded: 5},
		{IsCorrect: &yes, PointsAwarded: 10},
		{IsCorrect: &no, PointsAwarded: 0},
		{IsCorrect: nil, PointsAwarded: 0}, // pending essay
	}

	score, correctCount := Aggregate(answers)
	if score != 15 {
		t.Errorf("expected score 15, got %d", score)
	}
	if correctCount != 2 {
		t.Errorf("expected 2 correct, got %d", correctCount)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total int
		want         float64
	}{
		{20, 25, 80},
		{0, 25, 0},
		{25, 25, 100},
		{10, 0, 0}, // zero-point exam
	}
	for _, tt := range tests {
		if got := Percentage(tt.score, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A"},
		{90, "A"},
		{89.9, "B"},
		{80, "B"},
		{79, "C"},
		{70, "C"},
		{69.5, "D"},
		{60, "D"},
		{59.9, "E"},
		{0, "E"},
	}
	for _, tt := range tests {
		if got := LetterGrade(tt.percentage); got != tt.want {
			t.Errorf("LetterGrade(%v) = %s, want %s", tt.percentage, got, tt.want)
		}
	}
}

// A full grading pass: 20 of 25 points is 80%, grade B, passing at the
// default threshold.
func TestGradingEndToEnd(t *testing.T) {
	yes := true
	answers := []model.ExamAnswer{
		{IsCorrect: &yes, PointsAwarded: 5},
		{IsCorrect: &yes, PointsAwarded: 5},
		{IsCorrect: &yes, PointsAwarded: 10},
	}

	score, _ := Aggregate(answers)
	p := Percentage(score, 25)
	if p != 80 {
		t.Fatalf("expected 80%%, got %v", p)
	}
	if grade := LetterGrade(p); grade != "B" {
		t.Errorf("expected grade B, got %s", grade)
	}
	if p < 60 {
		t.Error("expected a passing percentage")
	}
}
