package commands

import (
	"context"
	"flag"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/tasks"
)

func init() {
	Register(NewDoneCmd(true))
	Register(NewDoneCmd(false))
}

// DoneCmd implements the done and undo commands.
type DoneCmd struct {
	completed bool
}

// NewDoneCmd returns the done command, or undo when completed is false.
func NewDoneCmd(completed bool) *DoneCmd {
	return &DoneCmd{completed: completed}
}

func (c *DoneCmd) Name() string {
	if c.completed {
		return "done"
	}
	return "undo"
}

func (c *DoneCmd) Aliases() []string {
	if c.completed {
		return []string{"complete"}
	}
	return []string{"reopen"}
}

func (c *DoneCmd) Synopsis() string {
	if c.completed {
		return "Mark a task completed"
	}
	return "Mark a task not completed"
}

func (c *DoneCmd) Usage() string   { return "tasktrack " + c.Name() + " <n>" }
func (c *DoneCmd) NeedsAuth() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, mgr *tasks.Manager, args []string, out, errOut io.Writer) int {
	task, code := resolveTask(mgr, args, errOut)
	if code != exitcode.Success {
		return code
	}

	r := mgr.ToggleComplete(ctx, task.ID, c.completed)
	return exitcode.FromKind(r.Kind)
}
