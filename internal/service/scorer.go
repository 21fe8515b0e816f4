package service

import (
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/repository"
	"school_exam_backend/internal/util"
	"strings"
)

// Scorer grades single answers and aggregates attempt totals. Grading
// always runs against the answer's question snapshot, never the live
// bank row.
type Scorer struct {
	AnswerRepo  *repository.AnswerRepository
	AttemptRepo *repository.AttemptRepository
}

func NewScorer(answerRepo *repository.AnswerRepository, attemptRepo *repository.AttemptRepository) *Scorer {
	return &Scorer{AnswerRepo: answerRepo, AttemptRepo: attemptRepo}
}

// GradeOne decides correctness and points for one answer. Essay answers
// return nil correctness: they stay pending until graded manually.
func (s *Scorer) GradeOne(snap model.QuestionSnapshot, payload model.AnswerPayload) (*bool, int) {
	var correct bool

	switch snap.Type {
	case model.SingleChoice, model.TrueFalse:
		correct = snap.CorrectAnswer.Kind == model.AnswerKey &&
			payload.Key != "" && payload.Key == snap.CorrectAnswer.Key

	case model.FillBlank:
		// Lenient by design: trimmed, case-insensitive set
		// intersection. Any overlap between the submitted strings and
		// the accepted set counts as correct.
		correct = hasNormalizedOverlap(payload.Texts, snap.CorrectAnswer.Accepted)

	case model.Matching:
		correct = mappingsEqual(payload.Mapping, snap.CorrectAnswer.Mapping)

	case model.Essay:
		return nil, 0

	default:
		correct = false
	}

	points := 0
	if correct {
		points = snap.Points
	}
	return &correct, points
}

func hasNormalizedOverlap(submitted, accepted []string) bool {
	if len(submitted) == 0 || len(accepted) == 0 {
		return false
	}
	acceptedSet := make(map[string]bool, len(accepted))
	for _, a := range accepted {
		acceptedSet[normalizeAnswer(a)] = true
	}
	for _, s := range submitted {
		if acceptedSet[normalizeAnswer(s)] {
			return true
		}
	}
	return false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func mappingsEqual(submitted, correct map[string]string) bool {
	if len(submitted) == 0 || len(submitted) != len(correct) {
		return false
	}
	for k, v := range correct {
		if submitted[k] != v {
			return false
		}
	}
	return true
}

// Aggregate sums awarded points and correct answers. Unanswered and
// pending-manual rows contribute zero.
func Aggregate(answers []model.ExamAnswer) (score, correctCount int) {
	for _, a := range answers {
		score += a.PointsAwarded
		if a.IsCorrect != nil && *a.IsCorrect {
			correctCount++
		}
	}
	return score, correctCount
}

// Percentage maps a raw score to 0..100; a zero-point exam scores zero
// rather than dividing by zero.
func Percentage(score, totalScore int) float64 {
	if totalScore <= 0 {
		return 0
	}
	return float64(score) / float64(totalScore) * 100
}

// LetterGrade applies the fixed A..E bands.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "E"
	}
}

// Finalize recomputes the attempt's totals from its answer rows and
// persists them. Safe to call repeatedly; it is a pure recomputation.
func (s *Scorer) Finalize(attempt *model.ExamAttempt) error {
	answers, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return err
	}

	attempt.Score, attempt.CorrectCount = Aggregate(answers)
	return s.AttemptRepo.Update(attempt)
}

// GradeManually writes an instructor's score for a pending (essay)
// answer and re-finalizes the attempt. Points are clamped to the
// question's value so an award can never exceed it.
func (s *Scorer) GradeManually(schoolID, answerID uint, points int) (*model.ExamAnswer, error) {
	answer, err := s.AnswerRepo.FindByID(schoolID, answerID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	snap, err := answer.Snapshot()
	if err != nil {
		return nil, err
	}

	if points < 0 {
		points = 0
	}
	if points > snap.Points {
		points = snap.Points
	}

	correct := points > 0
	answer.IsCorrect = &correct
	answer.PointsAwarded = points
	if err := s.AnswerRepo.Update(answer); err != nil {
		return nil, err
	}

	attempt, err := s.AttemptRepo.FindByID(schoolID, answer.AttemptID)
	if err != nil {
		return nil, err
	}
	if err := s.Finalize(attempt); err != nil {
		return nil, err
	}

	return answer, nil
}
