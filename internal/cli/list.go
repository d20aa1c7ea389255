package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/view"
)

func newListCmd(g *globals) *cobra.Command {
	var sortFlag, priorityFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board column by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sortBy, err := view.ParseSortBy(sortFlag)
			if err != nil {
				return err
			}
			var filter view.Filter
			if priorityFlag != "" {
				p, err := model.ParsePriority(priorityFlag)
				if err != nil {
					return err
				}
				filter = view.FilterBy(p)
			}

			a, err := g.openApp(cmd.ErrOrStderr(), app.ReadOnly())
			if err != nil {
				return err
			}
			defer a.Close()

			b := a.Hydrate(context.Background())
			printBoard(cmd.OutOrStdout(), b, sortBy, filter, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "Sort by priority or dueDate")
	cmd.Flags().StringVar(&priorityFlag, "priority", "", "Only show High, Medium or Low tasks")
	return cmd
}

func printBoard(w io.Writer, b model.Board, sortBy view.SortBy, filter view.Filter, now time.Time) {
	for _, col := range view.Board(b, sortBy, filter) {
		lock := ""
		if !col.IsDroppable {
			lock = " (locked)"
		}
		fmt.Fprintf(w, "%s [%d/%d]%s\n", col.Title, len(col.Tasks), col.Total, lock)
		for _, t := range col.Tasks {
			flag := ""
			if t.IsOverdue(now) {
				flag = " OVERDUE"
			}
			fmt.Fprintf(w, "  %s  %-6s  %s  %-8s  %s%s\n", t.ID, t.Priority, t.DueDate, t.Assignee, t.Title, flag)
		}
	}

	s := view.Summarize(b, now)
	fmt.Fprintf(w, "\n%d tasks, %d done, %d overdue (sort: %s, filter: %s)\n", s.Total, s.Done, s.Overdue, sortBy, filter)
}
