package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/tasks"
)

// Version is the application version. Set at build time with
// -ldflags "-X tasktrack/internal/commands.Version=...".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the client version and, with --verbose, the Go
// runtime and the configured server.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "tasktrack version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "also print runtime and server")
	fs.BoolVar(&c.verbose, "v", false, "also print runtime and server")
}

// SetVerbose sets the verbose flag (for testing).
func (c *VersionCmd) SetVerbose(v bool) { c.verbose = v }

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, mgr *tasks.Manager, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "tasktrack %s\n", Version)
	if c.verbose {
		fmt.Fprintf(out, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "server: %s\n", cfg.ServerURL)
	}
	return exitcode.Success
}
