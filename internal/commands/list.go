package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasktrack` (no args) and `tasktrack list`.
type ListCmd struct {
	long    bool
	refresh bool
}

// SetLong enables detailed output (for testing).
func (c *ListCmd) SetLong(long bool) {
	c.long = long
}

// SetRefresh forces a reload before printing (for testing).
func (c *ListCmd) SetRefresh(refresh bool) {
	c.refresh = refresh
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "tasktrack list [--long] [--refresh]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.long, "long", false, "")
	fs.BoolVar(&c.long, "l", false, "")
	fs.BoolVar(&c.refresh, "refresh", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, mgr *tasks.Manager, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if c.refresh {
		if r := mgr.RefreshTasks(ctx); !r.OK() {
			return exitcode.FromKind(r.Kind)
		}
	}

	list := mgr.Tasks()
	if len(list) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, task := range list {
		if c.long {
			output.FormatTaskDetail(out, i+1, task)
		} else {
			output.FormatTask(out, i+1, task)
		}
	}
	return exitcode.Success
}
