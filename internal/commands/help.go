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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasktrack help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, mgr *tasks.Manager, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasktrack                                          List tasks
  tasktrack list [common flags] [--long] [--refresh] List tasks
  tasktrack add [common flags] [--description <text>] <title...>
  tasktrack edit [common flags] [--title <text>] [--description <text>] <n>
  tasktrack done [common flags] <n>
  tasktrack undo [common flags] <n>
  tasktrack rm [common flags] <n>
  tasktrack login [common flags] --email <email> --password <password>
  tasktrack register [common flags] --email <email> --password <password> --name <name>
  tasktrack logout [common flags]
  tasktrack status [common flags]
  tasktrack shell [common flags]                     Interactive mode
  tasktrack help
  tasktrack version [--verbose]

Common flags:
  --config <dir>   Override config directory
  --server <url>   Override API server URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
