package service

import (
	"strings"
	"testing"

	"school_exam_backend/internal/model"
)

func validChoiceRequest() QuestionRequest {
	return QuestionRequest{
		Type:    model.SingleChoice,
		Content: "What is the capital of Indonesia?",
		Options: []model.QuestionOption{
			{Key: "A", Text: "Jakarta"},
			{Key: "B", Text: "Bandung"},
			{Key: "C", Text: "Surabaya"},
		},
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerKey, Key: "A"},
		Points:        5,
	}
}

func TestValidateQuestionCollectsAllViolations(t *testing.T) {
	req := QuestionRequest{
		Type:    model.SingleChoice,
		Content: "",
		Points:  0,
	}

	errs := ValidateQuestion(req)
	if len(errs) < 3 {
		t.Fatalf("expected every violation reported, got %v", errs)
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*QuestionRequest)
		wantErr string
	}{
		{"valid choice", func(r *QuestionRequest) {}, ""},
		{"unknown type", func(r *QuestionRequest) { r.Type = "ranking" }, "unknown question type"},
		{"zero points", func(r *QuestionRequest) { r.Points = 0 }, "points must be greater than zero"},
		{"no options", func(r *QuestionRequest) { r.Options = nil }, "non-empty option set"},
		{"duplicate option key", func(r *QuestionRequest) {
			r.Options = append(r.Options, model.QuestionOption{Key: "A", Text: "dup"})
		}, "duplicate option key"},
		{"answer key outside options", func(r *QuestionRequest) {
			r.CorrectAnswer = model.CorrectAnswer{Kind: model.AnswerKey, Key: "Z"}
		}, "not in the option set"},
		{"missing answer key", func(r *QuestionRequest) {
			r.CorrectAnswer = model.CorrectAnswer{Kind: model.AnswerNone}
		}, "require a correct-answer key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validChoiceRequest()
			tt.mutate(&req)
			errs := ValidateQuestion(req)
			if tt.wantErr == "" {
				if errs.Any() {
					t.Errorf("expected no violations, got %v", errs)
				}
				return
			}
			if !containsViolation(errs, tt.wantErr) {
				t.Errorf("expected a violation containing %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestValidateQuestionFillBlank(t *testing.T) {
	req := QuestionRequest{
		Type:          model.FillBlank,
		Content:       "Name the capital.",
		Points:        3,
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerSet, Accepted: []string{"Jakarta"}},
	}
	if errs := ValidateQuestion(req); errs.Any() {
		t.Errorf("expected valid request, got %v", errs)
	}

	req.CorrectAnswer.Accepted = []string{"   ", ""}
	if errs := ValidateQuestion(req); !containsViolation(errs, "non-empty accepted answer") {
		t.Errorf("expected accepted-set violation, got %v", errs)
	}

	req.CorrectAnswer = model.CorrectAnswer{Kind: model.AnswerKey, Key: "A"}
	if errs := ValidateQuestion(req); !containsViolation(errs, "accepted-answer set") {
		t.Errorf("expected answer-kind violation, got %v", errs)
	}
}

func TestValidateQuestionMatchingAndEssay(t *testing.T) {
	matching := QuestionRequest{
		Type:          model.Matching,
		Content:       "Match the pairs.",
		Points:        6,
		CorrectAnswer: model.CorrectAnswer{Kind: model.AnswerMapping, Mapping: map[string]string{"1": "a"}},
	}
	if errs := ValidateQuestion(matching); errs.Any() {
		t.Errorf("expected valid matching request, got %v", errs)
	}

	matching.CorrectAnswer.Mapping = nil
	if errs := ValidateQuestion(matching); !containsViolation(errs, "non-empty correct mapping") {
		t.Errorf("expected mapping violation, got %v", errs)
	}

	essay := QuestionRequest{
		Type:    model.Essay,
		Content: "Discuss the trade-offs.",
		Points:  10,
	}
	if errs := ValidateQuestion(essay); errs.Any() {
		t.Errorf("expected valid essay request, got %v", errs)
	}

	essay.CorrectAnswer = model.CorrectAnswer{Kind: model.AnswerKey, Key: "A"}
	if errs := ValidateQuestion(essay); !containsViolation(errs, "no machine-gradable") {
		t.Errorf("expected essay answer violation, got %v", errs)
	}
}

func containsViolation(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func groupMember(id uint, order int) model.Question {
	gid := uint(7)
	return model.Question{
		BaseModel:  model.BaseModel{ID: id},
		GroupID:    &gid,
		GroupOrder: order,
	}
}

func TestRenumberGroupExcludingStaysContiguous(t *testing.T) {
	tests := []struct {
		name     string
		detached uint
		wantIDs  []uint
	}{
		{"first member", 1, []uint{2, 3}},
		{"middle member", 2, []uint{1, 3}},
		{"last member", 3, []uint{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := []model.Question{
				groupMember(1, 1),
				groupMember(2, 2),
				groupMember(3, 3),
			}

			renumbered := renumberGroupExcluding(members, tt.detached)
			if len(renumbered) != len(tt.wantIDs) {
				t.Fatalf("got %d members, want %d", len(renumbered), len(tt.wantIDs))
			}
			for i, m := range renumbered {
				if m.ID != tt.wantIDs[i] {
					t.Errorf("position %d: got question %d, want %d", i, m.ID, tt.wantIDs[i])
				}
				if m.GroupOrder != i+1 {
					t.Errorf("question %d: order %d, want %d", m.ID, m.GroupOrder, i+1)
				}
			}
		})
	}
}

func TestRenumberGroupExcludingToleratesStaleRead(t *testing.T) {
	// A read that still contains the detached row must not leave a
	// hole: detaching the first of three leaves orders [1, 2].
	members := []model.Question{
		groupMember(1, 1),
		groupMember(2, 2),
		groupMember(3, 3),
	}

	renumbered := renumberGroupExcluding(members, 1)
	orders := make([]int, 0, len(renumbered))
	for _, m := range renumbered {
		orders = append(orders, m.GroupOrder)
	}
	if len(orders) != 2 || orders[0] != 1 || orders[1] != 2 {
		t.Errorf("remaining orders = %v, want [1 2]", orders)
	}
}
