package commands_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/credentials"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/notify"
	"tasktrack/internal/output"
	"tasktrack/internal/tasks"
	"tasktrack/internal/testutil"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret1"
)

// testEnv wires a manager to a FakeService and captures everything the
// command and the notification printer write.
type testEnv struct {
	svc    *testutil.FakeService
	creds  *credentials.MemoryStore
	mgr    *tasks.Manager
	cfg    *config.Config
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newEnv(t *testing.T, quiet bool) *testEnv {
	t.Helper()
	e := &testEnv{
		svc:   testutil.NewFakeService(),
		creds: credentials.NewMemoryStore(),
		cfg:   &config.Config{Dir: t.TempDir(), ServerURL: "http://api.test", Quiet: quiet},
	}
	queue := notify.NewQueue(notify.WithScheduler(func(time.Duration, func()) func() { return func() {} }))
	queue.Subscribe(output.Printer(&e.out, &e.errOut, quiet))
	e.mgr = tasks.NewManager(e.svc, e.creds, queue)
	return e
}

// loggedInEnv returns an env with a session whose tasks, in list order,
// are the given titles.
func loggedInEnv(t *testing.T, titles ...string) *testEnv {
	t.Helper()
	e := newEnv(t, false)
	e.svc.AddAccount(testEmail, testPassword, "Ada")
	for i, title := range titles {
		e.svc.AddTask(testEmail, "task"+string(rune('1'+i)), title)
	}
	if r := e.mgr.Login(context.Background(), testEmail, testPassword); !r.OK() {
		t.Fatalf("login failed: %v", r.Err)
	}
	e.out.Reset()
	e.errOut.Reset()
	return e
}

// run runs a command and returns what it printed.
func (e *testEnv) run(cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	e.out.Reset()
	e.errOut.Reset()
	code = cmd.Run(context.Background(), e.cfg, e.mgr, args, &e.out, &e.errOut)
	return e.out.String(), e.errOut.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	e := newEnv(t, false)

	stdout, stderr, code := e.run(&commands.VersionCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tasktrack 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	e := newEnv(t, false)
	cmd := &commands.VersionCmd{}
	cmd.SetVerbose(true)

	stdout, _, code := e.run(cmd)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 3 || lines[0] != "tasktrack 0.1.0" || !strings.HasPrefix(lines[1], "go: ") || lines[2] != "server: http://api.test" {
		t.Errorf("unexpected verbose output %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	e := newEnv(t, false)

	stdout, stderr, code := e.run(&commands.HelpCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "tasktrack add", "tasktrack shell", "--server <url>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	e := loggedInEnv(t, "Buy milk", "Buy eggs")

	stdout, stderr, code := e.run(&commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy milk\n   2  [ ] Buy eggs\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	e := loggedInEnv(t)

	stdout, _, code := e.run(&commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	e := loggedInEnv(t)
	e.cfg.Quiet = true

	stdout, _, code := e.run(&commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_Long(t *testing.T) {
	e := loggedInEnv(t, "Buy milk")
	cmd := &commands.ListCmd{}
	cmd.SetLong(true)

	stdout, _, _ := e.run(cmd)

	expected := "   1  [ ] Buy milk\n          created 2024-01-01 09:00\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_RefreshFailure(t *testing.T) {
	e := loggedInEnv(t, "Buy milk")
	e.svc.ListTasksErr = testutil.Unreachable()
	cmd := &commands.ListCmd{}
	cmd.SetRefresh(true)

	stdout, stderr, code := e.run(cmd)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: Failed to load tasks\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_RejectsArgs(t *testing.T) {
	e := loggedInEnv(t)

	_, stderr, code := e.run(&commands.ListCmd{}, "work")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: work\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	e := loggedInEnv(t, "Buy eggs")
	cmd := &commands.AddCmd{}
	cmd.SetDescription("2 liters")

	stdout, stderr, code := e.run(cmd, "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "Success: Task added successfully\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	stored := e.svc.StoredTasks(testEmail)
	if len(stored) != 2 || stored[0].Title != "Buy milk" || stored[0].Description != "2 liters" {
		t.Errorf("unexpected stored tasks %+v", stored)
	}
	if first, _ := e.mgr.TaskAt(1); first.Title != "Buy milk" {
		t.Errorf("expected new task first, got %+v", first)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	e := newEnv(t, true)
	e.svc.AddAccount(testEmail, testPassword, "Ada")
	e.mgr.Login(context.Background(), testEmail, testPassword)

	stdout, _, code := e.run(&commands.AddCmd{}, "Buy milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_TitleRequired(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"blank", []string{"  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := loggedInEnv(t)

			_, stderr, code := e.run(&commands.AddCmd{}, tt.args...)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != "error: title required\n" {
				t.Errorf("unexpected stderr %q", stderr)
			}
			if len(e.svc.StoredTasks(testEmail)) != 0 {
				t.Error("expected nothing created")
			}
		})
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	e := loggedInEnv(t)
	e.svc.CreateTaskErr = testutil.Rejected(http.StatusInternalServerError)

	_, stderr, code := e.run(&commands.AddCmd{}, "Buy milk")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Failed to add task\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_Title(t *testing.T) {
	e := loggedInEnv(t, "Write report", "Buy milk")
	cmd := &commands.EditCmd{}
	cmd.SetTitle("Write quarterly report")

	stdout, _, code := e.run(cmd, "1")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Success: Task updated successfully\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	task, _ := e.mgr.TaskAt(1)
	if task.Title != "Write quarterly report" {
		t.Errorf("expected title updated, got %q", task.Title)
	}
}

func TestEditCommand_DescriptionKeepsTitle(t *testing.T) {
	e := loggedInEnv(t, "Write report")
	cmd := &commands.EditCmd{}
	cmd.SetDescription("Q3 numbers")

	_, _, code := e.run(cmd, "1")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	stored := e.svc.StoredTasks(testEmail)[0]
	if stored.Title != "Write report" || stored.Description != "Q3 numbers" {
		t.Errorf("unexpected stored task %+v", stored)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	e := loggedInEnv(t, "Write report")

	_, stderr, code := e.run(&commands.EditCmd{}, "1")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "nothing to change") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand_BlankTitle(t *testing.T) {
	e := loggedInEnv(t, "Write report")
	cmd := &commands.EditCmd{}
	cmd.SetTitle(" ")

	_, stderr, code := e.run(cmd, "1")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for done and undo commands
func TestDoneUndoCommands(t *testing.T) {
	e := loggedInEnv(t, "Buy milk")

	stdout, _, code := e.run(commands.NewDoneCmd(true), "1")
	if code != exitcode.Success {
		t.Fatalf("done: expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Success: Task marked as completed\n" {
		t.Errorf("done: unexpected stdout %q", stdout)
	}
	if task, _ := e.mgr.TaskAt(1); !task.Completed {
		t.Error("expected task completed")
	}

	stdout, _, code = e.run(commands.NewDoneCmd(false), "1")
	if code != exitcode.Success {
		t.Fatalf("undo: expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Success: Task marked as not completed\n" {
		t.Errorf("undo: unexpected stdout %q", stdout)
	}
	if task, _ := e.mgr.TaskAt(1); task.Completed {
		t.Error("expected task reopened")
	}
}

func TestDoneCommand_Failure(t *testing.T) {
	e := loggedInEnv(t, "Buy milk")
	e.svc.UpdateTaskErr = testutil.Unreachable()

	_, stderr, code := e.run(commands.NewDoneCmd(true), "1")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Failed to update task\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestTaskRefErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing", nil, "error: task reference required\n"},
		{"out of range", []string{"5"}, "error: task number out of range: 5\n"},
		{"zero", []string{"0"}, "error: task number out of range: 0\n"},
		{"invalid", []string{"abc"}, "error: invalid task reference: abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := loggedInEnv(t, "Buy milk")

			_, stderr, code := e.run(&commands.RmCmd{}, tt.args...)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
			if len(e.svc.StoredTasks(testEmail)) != 1 {
				t.Error("expected nothing deleted")
			}
		})
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	e := loggedInEnv(t, "Buy milk", "Buy eggs")

	stdout, _, code := e.run(&commands.RmCmd{}, "2")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Success: Task deleted successfully\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	list := e.mgr.Tasks()
	if len(list) != 1 || list[0].Title != "Buy milk" {
		t.Errorf("unexpected tasks %+v", list)
	}
}

func TestRmCommand_SessionExpired(t *testing.T) {
	e := loggedInEnv(t, "Buy milk")
	sess, _ := e.mgr.Session()
	e.svc.RevokeToken(sess.Token)

	_, stderr, code := e.run(&commands.RmCmd{}, "1")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: Session expired, please log in again\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, ok := e.creds.Get(); ok {
		t.Error("expected stored session cleared")
	}
}

// Tests for status command
func TestStatusCommand(t *testing.T) {
	e := newEnv(t, false)

	stdout, _, code := e.run(&commands.StatusCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "server: http://api.test\nstatus: ok\nsession: none\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestStatusCommand_Unreachable(t *testing.T) {
	e := newEnv(t, false)
	e.svc.HealthErr = testutil.Unreachable()

	_, stderr, code := e.run(&commands.StatusCmd{})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for the registry
func TestRegistry_FindByAlias(t *testing.T) {
	for _, name := range []string{"ls", "create", "complete", "reopen", "delete", "signup"} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("expected alias %q to be registered", name)
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.RmCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&commands.RmCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	all := commands.DefaultRegistry.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Name() >= all[i].Name() {
			t.Errorf("commands not sorted: %s before %s", all[i-1].Name(), all[i].Name())
		}
	}
}

type renamedCmd struct {
	*commands.RmCmd
	name string
}

func (c renamedCmd) Name() string      { return c.name }
func (c renamedCmd) Aliases() []string { return nil }

func TestRegistry_Reserved(t *testing.T) {
	r := commands.NewRegistry()
	err := r.Register(renamedCmd{RmCmd: &commands.RmCmd{}, name: "shell"})
	if err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Errorf("expected reserved-name error, got %v", err)
	}
}

func TestRegistry_Suggest(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"lo", []string{"login", "logout"}},
		{"lsit", nil},
		{"lst", []string{"list"}},
		{"dne", []string{"done"}},
		{"x", nil},
		{"nope", nil},
	}
	for _, tt := range tests {
		got := commands.DefaultRegistry.Suggest(tt.name)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Suggest(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegistry_UnknownCommand(t *testing.T) {
	got := commands.DefaultRegistry.UnknownCommand("logn")
	want := "error: unknown command: logn\ndid you mean: login?\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
