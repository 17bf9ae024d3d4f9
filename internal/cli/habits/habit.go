package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

type HabitCmd struct {
	List   HabitListCmd   `cmd:"" help:"List habits and today's status." default:"1"`
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle today's completion for a habit."`
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	habits, err := ctx.Habits.Habits(context.Background())
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits yet. Add one with 'habitual habit add <name>'.")
		return nil
	}

	done := 0
	for _, h := range habits {
		if h.IsCompletedToday {
			done++
		}
		ctx.Println(FormatHabit(h))
	}
	ctx.Printf("\nCompleted today: %d/%d\n", done, len(habits))
	return nil
}

// FormatHabit renders one habit as a checklist line
func FormatHabit(h models.Habit) string {
	status := "[ ]"
	if h.IsCompletedToday {
		status = "[x]"
	}
	line := fmt.Sprintf("%s %3d  %s  (streak %d, best %d)", status, h.ID, h.Name, h.CurrentStreak, h.LongestStreak)
	if desc := strings.TrimSpace(h.Description); desc != "" {
		line += "\n          " + desc
	}
	return line
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `short:"d" help:"Optional description."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	habit, err := ctx.Habits.Create(context.Background(), c.Name, c.Description)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added habit %q (id %d)\n", habit.Name, habit.ID)
	return nil
}

// confirmDelete asks before a habit is removed
var confirmDelete = func(name string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete habit %q?", name)).
		Description("Its streak and completion history will be lost.").
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		WithTheme(huh.ThemeDracula()).
		Run()
	return ok, err
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	habit, err := ctx.Habits.Find(context.Background(), c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := confirmDelete(habit.Name)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Habits.Delete(context.Background(), habit.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted habit %q\n", habit.Name)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Done  bool   `help:"Mark as completed today." xor:"state"`
	Undo  bool   `help:"Mark as not completed today." xor:"state"`
}

var errConflictingState = errors.New("--done and --undo cannot be combined")

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	if c.Done && c.Undo {
		return errConflictingState
	}

	habit, err := ctx.Habits.Find(context.Background(), c.Habit)
	if err != nil {
		return err
	}

	completed := !habit.IsCompletedToday
	switch {
	case c.Done:
		completed = true
	case c.Undo:
		completed = false
	}

	updated, err := ctx.Habits.Toggle(context.Background(), habit.ID, completed)
	if err != nil {
		return err
	}
	if updated.IsCompletedToday {
		ctx.Printf("✓ %s done for today (streak %d)\n", updated.Name, updated.CurrentStreak)
	} else {
		ctx.Printf("○ %s marked not done\n", updated.Name)
	}
	return nil
}
