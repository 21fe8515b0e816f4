package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"school_exam_backend/internal/config"
	"school_exam_backend/internal/model"
	"school_exam_backend/internal/repository"
	"school_exam_backend/internal/util"
	"school_exam_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsService aggregates completed attempts into per-schedule
// statistics. Results are cached in redis for a short TTL because the
// aggregation reads every attempt of the schedule.
type AnalyticsService struct {
	AttemptRepo  *repository.AttemptRepository
	AnswerRepo   *repository.AnswerRepository
	ScheduleRepo *repository.ScheduleRepository
	ExamRepo     *repository.ExamRepository
	Redis        *redis.Client
	Cfg          *config.Config
}

func NewAnalyticsService(
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.AnswerRepository,
	scheduleRepo *repository.ScheduleRepository,
	examRepo *repository.ExamRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *AnalyticsService {
	return &AnalyticsService{
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
		ScheduleRepo: scheduleRepo,
		ExamRepo:     examRepo,
		Redis:        rdb,
		Cfg:          cfg,
	}
}

// ScoreBand is one bucket of the score distribution, keyed by the
// percentage range it covers.
type ScoreBand struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type TimeBand struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// QuestionStat is the per-question accuracy across all counted
// attempts of a schedule.
type QuestionStat struct {
	QuestionID   uint    `json:"questionId"`
	Answered     int     `json:"answered"`
	Correct      int     `json:"correct"`
	AccuracyRate float64 `json:"accuracyRate"`
	AvgTimeSpent float64 `json:"avgTimeSpentSeconds"`
}

// ScheduleStats is the full analytics payload for one schedule. A
// schedule with no finished attempts reports zeros, never an error.
type ScheduleStats struct {
	ScheduleID     uint    `json:"scheduleId"`
	TotalScore     int     `json:"totalScore"`
	PassingScore   int     `json:"passingScore"`
	AttemptCount   int     `json:"attemptCount"`
	PassedCount    int     `json:"passedCount"`
	PassRate       float64 `json:"passRate"`
	AverageScore   float64 `json:"averageScore"`
	AveragePercent float64 `json:"averagePercent"`
	HighestScore   int     `json:"highestScore"`
	LowestScore    int     `json:"lowestScore"`
	AvgTimeSeconds float64 `json:"avgTimeSeconds"`

	ScoreDistribution []ScoreBand    `json:"scoreDistribution"`
	TimeDistribution  []TimeBand     `json:"timeDistribution"`
	QuestionStats     []QuestionStat `json:"questionStats"`

	GeneratedAt time.Time `json:"generatedAt"`
}

func cacheKey(schoolID, scheduleID uint) string {
	return fmt.Sprintf("exam:stats:%d:%d", schoolID, scheduleID)
}

// GetScheduleStats returns the aggregated statistics, serving from the
// redis cache when fresh. Cache failures degrade to recomputation.
func (s *AnalyticsService) GetScheduleStats(ctx context.Context, schoolID, scheduleID uint) (*ScheduleStats, error) {
	key := cacheKey(schoolID, scheduleID)
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var cached ScheduleStats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.computeScheduleStats(schoolID, scheduleID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		ttl := time.Duration(s.Cfg.Exam.AnalyticsCacheSeconds) * time.Second
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.Redis.Set(ctx, key, raw, ttl).Err(); err != nil {
				logger.Log.Warn("analytics cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached statistics for a schedule. Called when
// an attempt finishes or a manual grade lands.
func (s *AnalyticsService) Invalidate(ctx context.Context, schoolID, scheduleID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, cacheKey(schoolID, scheduleID)).Err(); err != nil {
		logger.Log.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

func (s *AnalyticsService) computeScheduleStats(schoolID, scheduleID uint) (*ScheduleStats, error) {
	schedule, err := s.ScheduleRepo.FindByID(schoolID, scheduleID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	subject, err := s.ExamRepo.FindSubjectByID(schedule.ExamSubjectID)
	if err != nil {
		return nil, util.ErrNotFound
	}

	attempts, err := s.AttemptRepo.CompletedBySchedule(schoolID, scheduleID)
	if err != nil {
		return nil, err
	}

	stats := &ScheduleStats{
		ScheduleID:        scheduleID,
		TotalScore:        subject.TotalScore,
		PassingScore:      schedule.PassingScore,
		ScoreDistribution: emptyScoreBands(),
		TimeDistribution:  emptyTimeBands(subject.DurationMinutes),
		QuestionStats:     []QuestionStat{},
		GeneratedAt:       time.Now(),
	}
	if len(attempts) == 0 {
		return stats, nil
	}

	stats.AttemptCount = len(attempts)
	stats.LowestScore = attempts[0].Score

	scoreSum, timeSum := 0, 0
	percentSum := 0.0
	for _, a := range attempts {
		scoreSum += a.Score
		timeSum += a.TotalTimeSeconds
		if a.Score > stats.HighestScore {
			stats.HighestScore = a.Score
		}
		if a.Score < stats.LowestScore {
			stats.LowestScore = a.Score
		}

		p := Percentage(a.Score, subject.TotalScore)
		percentSum += p
		if p >= float64(schedule.PassingScore) {
			stats.PassedCount++
		}
		bucketScore(stats.ScoreDistribution, p)
		bucketTime(stats.TimeDistribution, a.TotalTimeSeconds, subject.DurationMinutes)
	}

	n := float64(len(attempts))
	stats.AverageScore = float64(scoreSum) / n
	stats.AveragePercent = percentSum / n
	stats.AvgTimeSeconds = float64(timeSum) / n
	stats.PassRate = float64(stats.PassedCount) / n * 100

	qs, err := s.questionStats(attempts)
	if err != nil {
		return nil, err
	}
	stats.QuestionStats = qs
	return stats, nil
}

// emptyScoreBands lays out five equal-width percentage buckets. These
// are distribution buckets, not letter-grade thresholds.
func emptyScoreBands() []ScoreBand {
	return []ScoreBand{
		{Label: "0-20"},
		{Label: "21-40"},
		{Label: "41-60"},
		{Label: "61-80"},
		{Label: "81-100"},
	}
}

func bucketScore(bands []ScoreBand, percent float64) {
	switch {
	case percent <= 20:
		bands[0].Count++
	case percent <= 40:
		bands[1].Count++
	case percent <= 60:
		bands[2].Count++
	case percent <= 80:
		bands[3].Count++
	default:
		bands[4].Count++
	}
}

// emptyTimeBands splits the allowed duration into four equal ranges
// plus an overflow bucket for attempts closed at the hard deadline.
func emptyTimeBands(durationMinutes int) []TimeBand {
	step := timeBandStep(durationMinutes)
	bands := make([]TimeBand, 0, 5)
	for i := 0; i < 4; i++ {
		bands = append(bands, TimeBand{Label: fmt.Sprintf("%d-%dm", i*step, (i+1)*step)})
	}
	return append(bands, TimeBand{Label: fmt.Sprintf(">%dm", 4*step)})
}

func bucketTime(bands []TimeBand, seconds, durationMinutes int) {
	idx := seconds / 60 / timeBandStep(durationMinutes)
	if idx > 4 {
		idx = 4
	}
	bands[idx].Count++
}

func timeBandStep(durationMinutes int) int {
	if durationMinutes <= 0 {
		durationMinutes = 60
	}
	step := durationMinutes / 4
	if step == 0 {
		step = 1
	}
	return step
}

func (s *AnalyticsService) questionStats(attempts []model.ExamAttempt) ([]QuestionStat, error) {
	ids := make([]string, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.ID)
	}
	answers, err := s.AnswerRepo.ListByAttempts(ids)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]*QuestionStat)
	timeByQuestion := make(map[uint]int)
	for i := range answers {
		a := &answers[i]
		st, ok := byQuestion[a.QuestionID]
		if !ok {
			st = &QuestionStat{QuestionID: a.QuestionID}
			byQuestion[a.QuestionID] = st
		}
		st.Answered++
		timeByQuestion[a.QuestionID] += a.TimeSpentSeconds
		if a.IsCorrect != nil && *a.IsCorrect {
			st.Correct++
		}
	}

	out := make([]QuestionStat, 0, len(byQuestion))
	for id, st := range byQuestion {
		st.AccuracyRate = float64(st.Correct) / float64(st.Answered) * 100
		st.AvgTimeSpent = float64(timeByQuestion[id]) / float64(st.Answered)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

// StudentProgress summarizes one student's attempt history for the
// student dashboard.
type StudentProgress struct {
	StudentID      uint    `json:"studentId"`
	AttemptCount   int     `json:"attemptCount"`
	CompletedCount int     `json:"completedCount"`
	AverageScore   float64 `json:"averageScore"`
	BestScore      int     `json:"bestScore"`
}

func (s *AnalyticsService) GetStudentProgress(schoolID, studentID uint) (*StudentProgress, error) {
	attempts, _, err := s.AttemptRepo.ListByStudent(schoolID, studentID, 1, 1000)
	if err != nil {
		return nil, err
	}

	progress := &StudentProgress{StudentID: studentID}
	scoreSum := 0
	for _, a := range attempts {
		progress.AttemptCount++
		if a.Status == model.AttemptCompleted || a.Status == model.AttemptTimeout {
			progress.CompletedCount++
			scoreSum += a.Score
			if a.Score > progress.BestScore {
				progress.BestScore = a.Score
			}
		}
	}
	if progress.CompletedCount > 0 {
		progress.AverageScore = float64(scoreSum) / float64(progress.CompletedCount)
	}
	return progress, nil
}
