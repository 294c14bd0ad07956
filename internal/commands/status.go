package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/tasks"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Check the server" }
func (c *StatusCmd) Usage() string     { return "tasktrack status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, mgr *tasks.Manager, args []string, out, errOut io.Writer) int {
	status, err := mgr.Health(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	fmt.Fprintf(out, "server: %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "status: %s\n", status)
	if cfg.HasSession() {
		fmt.Fprintln(out, "session: stored")
	} else {
		fmt.Fprintln(out, "session: none")
	}
	return exitcode.Success
}
