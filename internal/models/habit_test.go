package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

const habitJSON = `{
	"id": 1,
	"name": "Read 30 minutes",
	"description": "Non-fiction",
	"createdDate": "2026-01-02T08:00:00Z",
	"updatedDate": "2026-01-03T08:00:00Z",
	"currentStreak": 2,
	"longestStreak": 5,
	"lastCompletedAt": "2026-01-03T07:30:00Z",
	"isCompletedToday": true,
	"totalCompletions": 12,
	"deletedDate": null,
	"createdById": 7,
	"updatedById": null
}`

func TestHabitListDecodesBothShapes(t *testing.T) {
	var bare, wrapped HabitList
	if err := json.Unmarshal([]byte("["+habitJSON+"]"), &bare); err != nil {
		t.Fatalf("decode bare list: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"habits":[`+habitJSON+`]}`), &wrapped); err != nil {
		t.Fatalf("decode wrapped list: %v", err)
	}

	if len(bare) != 1 {
		t.Fatalf("len(bare) = %d, want 1", len(bare))
	}
	if !reflect.DeepEqual(bare, wrapped) {
		t.Errorf("bare and wrapped lists differ:\n%+v\n%+v", bare, wrapped)
	}

	h := bare[0]
	if h.Name != "Read 30 minutes" || h.CurrentStreak != 2 || !h.IsCompletedToday {
		t.Errorf("unexpected habit: %+v", h)
	}
	if h.CreatedByID == nil || *h.CreatedByID != 7 {
		t.Errorf("CreatedByID = %v, want 7", h.CreatedByID)
	}
	if h.UpdatedByID != nil || h.DeletedDate != nil {
		t.Errorf("null fields should decode to nil: %+v", h)
	}
}

func TestHabitListEmptyShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty array", `[]`},
		{"null", `null`},
		{"wrapped without habits", `{}`},
		{"wrapped null habits", `{"habits": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list HabitList
			if err := json.Unmarshal([]byte(tt.payload), &list); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.payload, err)
			}
			if list == nil || len(list) != 0 {
				t.Errorf("Unmarshal(%s) = %#v, want empty non-nil list", tt.payload, list)
			}
		})
	}
}

func TestHabitListRejectsScalars(t *testing.T) {
	var list HabitList
	if err := json.Unmarshal([]byte(`"habits"`), &list); err == nil {
		t.Error("expected error decoding a string payload")
	}
}

func TestHabitStats(t *testing.T) {
	tests := []struct {
		name    string
		stats   HabitStats
		percent int
		allDone bool
	}{
		{"no habits", HabitStats{}, 0, false},
		{"partial", HabitStats{TotalHabits: 3, CompletedToday: 2}, 67, false},
		{"all done", HabitStats{TotalHabits: 4, CompletedToday: 4}, 100, true},
		{"none done", HabitStats{TotalHabits: 4}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.CompletionPercentage(); got != tt.percent {
				t.Errorf("CompletionPercentage() = %d, want %d", got, tt.percent)
			}
			if got := tt.stats.AllDone(); got != tt.allDone {
				t.Errorf("AllDone() = %v, want %v", got, tt.allDone)
			}
		})
	}
}

func TestToggleHabitRequestBody(t *testing.T) {
	body, err := json.Marshal(ToggleHabitRequest{Completed: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"completed":true}` {
		t.Errorf("toggle body = %s, want {\"completed\":true}", body)
	}
}

func TestUserValid(t *testing.T) {
	if (User{Username: "ana"}).Valid() {
		t.Error("user without token should be invalid")
	}
	if !(User{ID: 1, Username: "ana", AccessToken: "tok"}).Valid() {
		t.Error("complete user should be valid")
	}
}
