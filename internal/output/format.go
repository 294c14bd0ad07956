// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/notify"
	"tasktrack/internal/service"
)

// CreatedLayout is the timestamp layout used in detailed task output.
const CreatedLayout = "2006-01-02 15:04"

// FormatTask formats a task line for the list.
// Format: "{N:>4}  [x] {TITLE}\n" ("[ ]" for open tasks).
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Completed), normalizeTitle(task.Title))
}

// FormatTaskDetail formats a task line followed by its description and
// creation time, each indented under the title.
func FormatTaskDetail(w io.Writer, num int, task service.Task) {
	FormatTask(w, num, task)
	if desc := normalizeDescription(task.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "          created %s\n", task.CreatedAt.UTC().Format(CreatedLayout))
	}
}

// FormatNotification formats one notification.
// Normal: "{TITLE}: {DESCRIPTION}\n"; destructive: "error: {DESCRIPTION}\n".
func FormatNotification(w io.Writer, n notify.Notification) {
	text := n.Description
	if text == "" {
		text = n.Title
	}
	if n.Severity == notify.Destructive {
		fmt.Fprintf(w, "error: %s\n", text)
		return
	}
	if n.Description == "" {
		fmt.Fprintln(w, n.Title)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", n.Title, text)
}

// Printer returns a notification listener that prints normal
// notifications to out (unless quiet) and destructive ones to errOut.
func Printer(out, errOut io.Writer, quiet bool) func(notify.Notification) {
	return func(n notify.Notification) {
		if n.Severity == notify.Destructive {
			FormatNotification(errOut, n)
			return
		}
		if !quiet {
			FormatNotification(out, n)
		}
	}
}

// FormatPending formats the live notifications of a queue, oldest first.
func FormatPending(w io.Writer, items []notify.Notification) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no notifications")
		return
	}
	for _, n := range items {
		fmt.Fprintf(w, "[%s] ", n.Severity)
		FormatNotification(w, n)
	}
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeDescription flattens a description onto one line.
func normalizeDescription(desc string) string {
	desc = strings.ReplaceAll(desc, "\r", " ")
	desc = strings.ReplaceAll(desc, "\n", " ")
	return strings.TrimSpace(desc)
}
