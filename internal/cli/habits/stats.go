package habits

import (
	"context"

	"github.com/julianstephens/habitual/internal/cli"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	stats, err := ctx.Habits.Stats(context.Background())
	if err != nil {
		return err
	}

	ctx.Printf("Habits:            %d\n", stats.TotalHabits)
	ctx.Printf("Completed today:   %d (%d%%)\n", stats.CompletedToday, stats.CompletionPercentage())
	ctx.Printf("Total completions: %d\n", stats.TotalCompletions)
	ctx.Printf("Average streak:    %.1f\n", stats.AverageStreak)
	if stats.AllDone() {
		ctx.Println("\n🎉 All habits done for today!")
	}
	return nil
}
