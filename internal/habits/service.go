// Package habits exposes cached habit queries and the mutations that keep
// them consistent.
package habits

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/habitual/internal/cache"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

const (
	HabitListKey cache.Key = "habits/list"
	StatsKey     cache.Key = "stats"
)

// ErrNoMatch is returned by Find when no habit matches the reference
var ErrNoMatch = errors.New("no matching habit")

// Client is the subset of the API client the service needs
type Client interface {
	ListHabits(ctx context.Context) ([]models.Habit, error)
	CreateHabit(ctx context.Context, name, description string) (models.Habit, error)
	DeleteHabit(ctx context.Context, id int) error
	GetStats(ctx context.Context) (models.HabitStats, error)
	ToggleHabit(ctx context.Context, id int, completed bool) (models.Habit, error)
}

type Service struct {
	client Client
	cache  *cache.Cache
}

func NewService(client Client, c *cache.Cache) *Service {
	return &Service{client: client, cache: c}
}

func (s *Service) Cache() *cache.Cache { return s.cache }

// Habits returns the habit list, sorted by name
func (s *Service) Habits(ctx context.Context) ([]models.Habit, error) {
	return cache.Get(ctx, s.cache, HabitListKey, func(ctx context.Context) ([]models.Habit, error) {
		list, err := s.client.ListHabits(ctx)
		if err != nil {
			return nil, err
		}
		sorted := make([]models.Habit, len(list))
		copy(sorted, list)
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
		return sorted, nil
	})
}

func (s *Service) Stats(ctx context.Context) (models.HabitStats, error) {
	return cache.Get(ctx, s.cache, StatsKey, s.client.GetStats)
}

func (s *Service) Create(ctx context.Context, name, description string) (models.Habit, error) {
	habit, err := s.client.CreateHabit(ctx, name, description)
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("habit created", "id", habit.ID, "name", habit.Name)
	s.cache.Invalidate(HabitListKey)
	return habit, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.DeleteHabit(ctx, id); err != nil {
		return err
	}
	logger.Info("habit deleted", "id", id)
	s.cache.Invalidate(HabitListKey, StatsKey)
	return nil
}

// Toggle sets today's completion state for habit id
func (s *Service) Toggle(ctx context.Context, id int, completed bool) (models.Habit, error) {
	habit, err := s.client.ToggleHabit(ctx, id, completed)
	if err != nil {
		return models.Habit{}, err
	}
	logger.Debug("habit toggled", "id", id, "completed", completed)
	s.cache.Invalidate(HabitListKey, StatsKey)
	return habit, nil
}

// Refresh marks both queries stale
func (s *Service) Refresh() {
	s.cache.Invalidate(HabitListKey, StatsKey)
}

// Find resolves ref as a numeric ID or a case-insensitive name
func (s *Service) Find(ctx context.Context, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	habits, err := s.Habits(ctx)
	if err != nil {
		return models.Habit{}, err
	}

	if id, err := strconv.Atoi(ref); err == nil {
		for _, h := range habits {
			if h.ID == id {
				return h, nil
			}
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: %q", ErrNoMatch, ref)
}
