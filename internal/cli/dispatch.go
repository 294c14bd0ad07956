package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/credentials"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/logger"
	"tasktrack/internal/notify"
	"tasktrack/internal/output"
	"tasktrack/internal/service"
	"tasktrack/internal/tasks"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry  *commands.Registry
	factory   ServiceFactory
	in        io.Reader
	queueOpts []notify.Option
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithInput sets the reader the shell reads lines from. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(d *Dispatcher) { d.in = r }
}

// WithQueueOptions passes options to every notification queue the
// dispatcher creates (for testing).
func WithQueueOptions(opts ...notify.Option) Option {
	return func(d *Dispatcher) { d.queueOpts = opts }
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		factory:  factory,
		in:       os.Stdin,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	serverURL string
	quiet     bool
	debug     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.StringVar(&c.serverURL, "server", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
}

// env is everything a command runs against. The shell keeps one env for
// its whole lifetime so all lines share a session.
type env struct {
	cfg         *config.Config
	queue       *notify.Queue
	mgr         *tasks.Manager
	interactive bool
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	if cmdName == "shell" {
		return d.runShell(ctx, args[1:], out, errOut)
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprint(errOut, d.registry.UnknownCommand(cmdName))
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	positionalArgs, code := parseFlags(fs, args, errOut)
	if code != exitcode.Success {
		return code
	}

	e, code := d.newEnv(ctx, common, out, errOut)
	if code != exitcode.Success {
		return code
	}
	defer e.queue.Close()

	return d.runCommand(ctx, e, cmd, positionalArgs, out, errOut)
}

// runCommand checks the session requirement and runs cmd against e.
func (d *Dispatcher) runCommand(ctx context.Context, e *env, cmd commands.Command, args []string, out, errOut io.Writer) int {
	if cmd.NeedsAuth() {
		if code := requireSession(ctx, e, errOut); code != exitcode.Success {
			return code
		}
	}
	return cmd.Run(ctx, e.cfg, e.mgr, args, out, errOut)
}

// newEnv builds the config, backend, credential store, notification queue
// and manager for one invocation.
func (d *Dispatcher) newEnv(ctx context.Context, common commonFlags, out, errOut io.Writer) (*env, int) {
	cfg, err := config.New(common.configDir, common.serverURL)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	log := logger.NewClient(errOut, cfg.Debug)

	svc, err := d.factory(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, exitcode.BackendError
	}

	queue := notify.NewQueue(d.queueOpts...)
	queue.Subscribe(output.Printer(out, errOut, cfg.Quiet))

	creds := credentials.NewFileStore(cfg.SessionPath())
	mgr := tasks.NewManager(svc, creds, queue, tasks.WithLogger(log))

	return &env{cfg: cfg, queue: queue, mgr: mgr}, exitcode.Success
}

// requireSession restores the stored session on first use and fails when
// there is none. A failed initial load fails one-shot commands; the shell
// keeps going with whatever it has.
func requireSession(ctx context.Context, e *env, errOut io.Writer) int {
	r := e.mgr.Bootstrap(ctx)
	if _, ok := e.mgr.Session(); !ok {
		// An expired session has already been reported.
		if e.interactive || r.Kind != tasks.KindUnauthorized {
			fmt.Fprintln(errOut, "error: not logged in (run: tasktrack login)")
		}
		return exitcode.AuthError
	}
	if !e.interactive && !r.OK() {
		return exitcode.FromKind(r.Kind)
	}
	return exitcode.Success
}

// parseFlags parses args into fs, printing any flag error.
// It returns the positional arguments.
func parseFlags(fs *flag.FlagSet, args []string, errOut io.Writer) ([]string, int) {
	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		if name, ok := strings.CutPrefix(errStr, "flag needs an argument: "); ok {
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", name)
			return nil, exitcode.UserError
		}

		// Check for unknown flag
		if strings.HasPrefix(errStr, "flag provided but not defined:") {
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
			return nil, exitcode.UserError
		}

		fmt.Fprintf(errOut, "error: %s\n", errStr)
		return nil, exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return nil, exitcode.UserError
	}
	return positionalArgs, exitcode.Success
}
