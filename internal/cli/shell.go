package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/mattn/go-shellwords"

	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
)

// Prompt is printed before each shell line.
const Prompt = "tasktrack> "

// runShell reads command lines from d.in until EOF or "exit", running each
// against one shared manager. Notifications print as they happen and stay
// visible through "pending" until they expire.
// Returns the exit code of the last command.
func (d *Dispatcher) runShell(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	common.register(fs)

	rest, code := parseFlags(fs, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}

	e, code := d.newEnv(ctx, common, out, errOut)
	if code != exitcode.Success {
		return code
	}
	defer e.queue.Close()
	e.interactive = true

	e.mgr.Bootstrap(ctx)
	if sess, ok := e.mgr.Session(); ok && !e.cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", sess.Name)
	}

	parser := shellwords.NewParser()
	scanner := bufio.NewScanner(d.in)
	last := exitcode.Success

	fmt.Fprint(out, Prompt)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		words, err := parser.Parse(scanner.Text())
		switch {
		case err != nil:
			fmt.Fprintf(errOut, "error: %v\n", err)
			last = exitcode.UserError
		case len(words) == 0:
		case words[0] == "exit" || words[0] == "quit":
			return last
		case words[0] == "pending":
			output.FormatPending(out, e.queue.Pending())
			last = exitcode.Success
		case words[0] == "shell":
			fmt.Fprintln(errOut, "error: already in shell")
			last = exitcode.UserError
		default:
			last = d.shellLine(ctx, e, words, out, errOut)
		}

		fmt.Fprint(out, Prompt)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return last
}

// shellLine runs one parsed shell line. Common flags are accepted so that
// lines read like the one-shot commands, but they do not change the shared
// environment.
func (d *Dispatcher) shellLine(ctx context.Context, e *env, words []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(words[0])
	if !ok {
		fmt.Fprint(errOut, d.registry.UnknownCommand(words[0]))
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ignored commonFlags
	ignored.register(fs)
	cmd.RegisterFlags(fs)

	args, code := parseFlags(fs, words[1:], errOut)
	if code != exitcode.Success {
		return code
	}
	return d.runCommand(ctx, e, cmd, args, out, errOut)
}
