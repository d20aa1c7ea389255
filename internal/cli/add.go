package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/dsboard/internal/model"
)

func newAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task>",
		Short: "Quick add a task to Todo",
		Long: `Quick add a task to the Todo column.

  dsboard add "Sketch onboarding flow"
  dsboard add "Review prototype @Leslie !high due:friday"

  Assignee:  @name
  Priority:  !low !medium !high
  Due date:  due:today due:tomorrow due:friday due:2024-01-15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			a.Hydrate(ctx)

			in := parseQuickAdd(strings.Join(args, " "), time.Now())
			task, err := a.Create(ctx, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s: %s\n", task.ID, task.Title)
			fmt.Fprintf(out, "Due: %s  Priority: %s  Assignee: %s\n", task.DueDate, task.Priority, task.Assignee)
			return nil
		},
	}
}

// parseQuickAdd splits quick add text into title and markers. Markers that
// do not parse stay in the title.
func parseQuickAdd(text string, now time.Time) model.TaskInput {
	var in model.TaskInput
	var titleParts []string

	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		switch {
		// Assignee (@Ann, @Leslie)
		case strings.HasPrefix(word, "@") && len(word) > 1:
			in.Assignee = strings.TrimPrefix(word, "@")

		// Priority (!low, !high)
		case strings.HasPrefix(word, "!"):
			p, err := model.ParsePriority(strings.TrimPrefix(word, "!"))
			if err != nil {
				titleParts = append(titleParts, word)
				continue
			}
			in.Priority = p

		// Due date (due:tomorrow, due:friday, due:2024-01-15)
		case strings.HasPrefix(lower, "due:"):
			if d, ok := parseNaturalDate(strings.TrimPrefix(lower, "due:"), now); ok {
				in.DueDate = d.Format(model.DateLayout)
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	in.Title = strings.Join(titleParts, " ")
	return in
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// parseNaturalDate resolves relative day names against now
func parseNaturalDate(s string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch s {
	case "today":
		return today, true
	case "tomorrow", "tom":
		return today.AddDate(0, 0, 1), true
	case "nextweek":
		return today.AddDate(0, 0, 7), true
	}
	if day, ok := weekdays[s]; ok {
		return nextWeekday(today, day), true
	}

	formats := []string{
		model.DateLayout,
		"01/02/2006",
		"01-02-2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nextWeekday returns the next occurrence of day strictly after today
func nextWeekday(today time.Time, day time.Weekday) time.Time {
	daysUntil := int(day - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}
