package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/models"
)

// streakCap bounds how far back the streak scan looks.
const streakCap = 365

// ErrInvalidMood is returned when a mood id is not in the taxonomy.
var ErrInvalidMood = fmt.Errorf("invalid mood id")

// moodService implements the MoodService interface. All day boundaries are
// UTC calendar days.
type moodService struct {
	moodRepo db.MoodRepository
	logger   *zap.Logger
	now      Clock
}

// NewMoodService creates a new MoodService instance.
func NewMoodService(moodRepo db.MoodRepository, logger *zap.Logger) MoodService {
	return &moodService{
		moodRepo: moodRepo,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// dayBounds returns the [start, end] instants of t's UTC calendar day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// SaveMood records today's mood, replacing an earlier entry for the same
// day. Returns "created" or "updated" so the caller can phrase its response.
func (s *moodService) SaveMood(ctx context.Context, userID, moodID, moodLabel string) (string, error) {
	valid := false
	for _, id := range models.MoodIDs {
		if id == moodID {
			valid = true
			break
		}
	}
	if !valid {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidMood, moodID)
	}

	now := s.now()
	start, end := dayBounds(now)
	existing, err := s.moodRepo.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to check today's mood for user '%s': %w", userID, err)
	}

	if len(existing) > 0 {
		if err := s.moodRepo.UpdateMood(ctx, existing[0].ID, moodID, moodLabel, now); err != nil {
			return "", fmt.Errorf("failed to update mood for user '%s': %w", userID, err)
		}
		return "updated", nil
	}

	entry := &models.MoodEntry{
		UserID:    userID,
		MoodID:    moodID,
		MoodLabel: moodLabel,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.moodRepo.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to save mood for user '%s': %w", userID, err)
	}
	return "created", nil
}

// GetMoodHistory returns the entries from the last N days, newest first.
func (s *moodService) GetMoodHistory(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error) {
	if days <= 0 {
		days = 30
	}
	now := s.now()
	_, end := dayBounds(now)
	start, _ := dayBounds(now.AddDate(0, 0, -(days - 1)))

	entries, err := s.moodRepo.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood history for user '%s': %w", userID, err)
	}
	return entries, nil
}

// GetLast7DaysMood returns exactly seven day slots, oldest first, ending
// today. Days without an entry carry a nil Mood.
func (s *moodService) GetLast7DaysMood(ctx context.Context, userID string) ([]models.DayView, error) {
	now := s.now()
	_, end := dayBounds(now)
	start, _ := dayBounds(now.AddDate(0, 0, -6))

	entries, err := s.moodRepo.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get last 7 days mood for user '%s': %w", userID, err)
	}

	byDay := make(map[string]*models.MoodEntry, len(entries))
	for _, entry := range entries {
		key := entry.Date.UTC().Format("2006-01-02")
		// Entries come newest first; keep the first one seen per day.
		if _, ok := byDay[key]; !ok {
			byDay[key] = entry
		}
	}

	days := make([]models.DayView, 0, 7)
	for i := 6; i >= 0; i-- {
		day, _ := dayBounds(now.AddDate(0, 0, -i))
		days = append(days, models.DayView{
			Date:      day,
			Mood:      byDay[day.Format("2006-01-02")],
			DayName:   day.Weekday().String(),
			DayNumber: day.Day(),
		})
	}
	return days, nil
}

// CalculateStreak counts consecutive days with an entry ending today.
// Returns 0 when today has no entry yet. Capped at streakCap days.
func (s *moodService) CalculateStreak(ctx context.Context, userID string) (int, error) {
	now := s.now()
	_, end := dayBounds(now)
	start, _ := dayBounds(now.AddDate(0, 0, -(streakCap - 1)))

	entries, err := s.moodRepo.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate streak for user '%s': %w", userID, err)
	}

	filled := make(map[string]bool, len(entries))
	for _, entry := range entries {
		filled[entry.Date.UTC().Format("2006-01-02")] = true
	}

	streak := 0
	for i := 0; i < streakCap; i++ {
		day, _ := dayBounds(now.AddDate(0, 0, -i))
		if !filled[day.Format("2006-01-02")] {
			break
		}
		streak++
	}
	return streak, nil
}

// GetMoodStats returns the percentage breakdown over "week" (7 days),
// "month" (30 days) or "year" (365 days). Percentages round half up; moods
// with zero occurrences are omitted.
func (s *moodService) GetMoodStats(ctx context.Context, userID, period string) ([]models.MoodStat, error) {
	days := 7
	switch period {
	case "month":
		days = 30
	case "year":
		days = 365
	}
	now := s.now()
	_, end := dayBounds(now)
	start, _ := dayBounds(now.AddDate(0, 0, -(days - 1)))

	entries, err := s.moodRepo.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood stats for user '%s': %w", userID, err)
	}

	counts := make(map[string]int, len(models.MoodIDs))
	for _, entry := range entries {
		counts[entry.MoodID]++
	}

	total := len(entries)
	stats := make([]models.MoodStat, 0, len(counts))
	// Iterate the taxonomy for a stable order.
	for _, moodID := range models.MoodIDs {
		count := counts[moodID]
		if count == 0 {
			continue
		}
		stats = append(stats, models.MoodStat{
			Mood:       moodID,
			Count:      count,
			Percentage: (count*100 + total/2) / total,
		})
	}
	return stats, nil
}
