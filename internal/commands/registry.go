package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Reserved names are handled by the interactive shell itself and cannot
// be registered as commands.
var Reserved = []string{"shell", "exit", "quit", "pending"}

// Registry maps command names and aliases to commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register adds c under its name and aliases. It fails if any of them is
// taken or reserved.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for _, n := range names {
		if slices.Contains(Reserved, n) {
			return fmt.Errorf("command name reserved: %s", n)
		}
		if _, exists := r.cmds[n]; exists {
			return fmt.Errorf("command already registered: %s", n)
		}
	}
	for _, n := range names {
		r.cmds[n] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns each command once, sorted by primary name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]Command)
	for _, cmd := range r.cmds {
		seen[cmd.Name()] = cmd
	}
	out := make([]Command, 0, len(seen))
	for _, cmd := range seen {
		out = append(out, cmd)
	}
	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// Suggest returns the primary names of commands that name may have meant:
// those with a name or alias starting with it, or one edit away from it.
func (r *Registry) Suggest(name string) []string {
	if len(name) < 2 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for n, cmd := range r.cmds {
		if !strings.HasPrefix(n, name) && (len(name) < 3 || !oneEdit(n, name)) {
			continue
		}
		if !slices.Contains(out, cmd.Name()) {
			out = append(out, cmd.Name())
		}
	}
	slices.Sort(out)
	return out
}

// oneEdit reports whether a and b differ by exactly one inserted, deleted
// or substituted byte.
func oneEdit(a, b string) bool {
	if len(a) < len(b) {
		a, b = b, a
	}
	switch len(a) - len(b) {
	case 0:
		diff := 0
		for i := range a {
			if a[i] != b[i] {
				diff++
			}
		}
		return diff == 1
	case 1:
		for i := range b {
			if a[i] != b[i] {
				return a[i+1:] == b[i:]
			}
		}
		return true
	}
	return false
}

// UnknownCommand formats the error for a name that is not registered.
func (r *Registry) UnknownCommand(name string) string {
	msg := "error: unknown command: " + name + "\n"
	if s := r.Suggest(name); len(s) > 0 {
		msg += "did you mean: " + strings.Join(s, ", ") + "?\n"
	}
	return msg
}

// DefaultRegistry holds the built-in commands.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
