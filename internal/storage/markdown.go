// ABOUTME: Markdown export of workout logs for sharing and notes.
// ABOUTME: Renders one table per user, newest first, honoring a LogFilter.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ExportMarkdown renders logs matching f as Markdown tables grouped by user.
func ExportMarkdown(ctx context.Context, repo Repository, f LogFilter, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	logs, err := repo.ListLogs(ctx, f)
	if err != nil {
		return "", fmt.Errorf("list logs: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Tribe Workouts\n\n")
	if f.TribeID != "" {
		fmt.Fprintf(&b, "Tribe: **%s**\n\n", f.TribeID)
	}
	if len(logs) == 0 {
		b.WriteString("_No workouts._\n")
		return b.String(), nil
	}

	byUser := map[string][]int{}
	for i, l := range logs {
		byUser[l.User] = append(byUser[l.User], i)
	}
	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	for _, u := range users {
		fmt.Fprintf(&b, "## %s\n\n", u)
		b.WriteString("| Date | Workout | Minutes | Calories | Volume (kg) |\n")
		b.WriteString("|------|---------|---------|----------|-------------|\n")
		for _, i := range byUser[u] {
			l := logs[i]
			cal := ""
			if l.Calories != nil {
				cal = fmt.Sprintf("%d", *l.Calories)
			}
			vol := ""
			if v := l.Volume(); v > 0 {
				vol = fmt.Sprintf("%.0f", v)
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
				l.Date.In(loc).Format("2006-01-02 15:04"),
				strings.ReplaceAll(l.Title(), "|", "/"),
				l.DurationMinutes, cal, vol)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
