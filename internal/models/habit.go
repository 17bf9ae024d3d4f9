package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Habit mirrors the server's habit resource. Streak counters are server-owned.
type Habit struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	CreatedDate      time.Time  `json:"createdDate"`
	UpdatedDate      time.Time  `json:"updatedDate"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastCompletedAt  *time.Time `json:"lastCompletedAt,omitempty"`
	IsCompletedToday bool       `json:"isCompletedToday"`
	TotalCompletions int        `json:"totalCompletions"`
	DeletedDate      *time.Time `json:"deletedDate"`
	CreatedByID      *int       `json:"createdById"`
	UpdatedByID      *int       `json:"updatedById"`
}

type HabitStats struct {
	TotalHabits      int     `json:"totalHabits"`
	CompletedToday   int     `json:"completedToday"`
	TotalCompletions int     `json:"totalCompletions"`
	AverageStreak    float64 `json:"averageStreak"`
}

// CompletionPercentage returns today's completion rate rounded to a whole percent
func (s HabitStats) CompletionPercentage() int {
	if s.TotalHabits <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CompletedToday) / float64(s.TotalHabits) * 100))
}

// AllDone reports whether every habit has been completed today
func (s HabitStats) AllDone() bool {
	return s.TotalHabits > 0 && s.CompletedToday == s.TotalHabits
}

type CreateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ToggleHabitRequest is the PATCH body for /habits/{id}/toggle. The habit ID
// travels in the path, never in the body.
type ToggleHabitRequest struct {
	Completed bool `json:"completed"`
}

// HabitList decodes the habit listing, which the server sends either as a
// bare array or wrapped as {"habits": [...]}.
type HabitList []Habit

func (l *HabitList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = HabitList{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var habits []Habit
		if err := json.Unmarshal(trimmed, &habits); err != nil {
			return err
		}
		*l = normalize(habits)
		return nil
	case '{':
		var wrapped struct {
			Habits []Habit `json:"habits"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		*l = normalize(wrapped.Habits)
		return nil
	default:
		return fmt.Errorf("unexpected habit list payload starting with %q", trimmed[0])
	}
}

func normalize(habits []Habit) HabitList {
	if habits == nil {
		return HabitList{}
	}
	return HabitList(habits)
}
