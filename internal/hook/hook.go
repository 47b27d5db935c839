// Package hook models the build orchestrator's post-action table: callbacks
// bound to a target path that run once the target has been produced.
package hook

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/fwpublish/internal/logfields"
)

// Orchestrator variables understood in target patterns.
const (
	VarProjectDir = "PROJECT_DIR"
	VarBuildDir   = "BUILD_DIR"
	VarProgName   = "PROGNAME"
)

// Event is what the orchestrator hands to a post action.
type Event struct {
	// ProjectDir is the project root.
	ProjectDir string
	// BuildDir is the orchestrator's own build directory (e.g. .pio/build/esp32).
	BuildDir string
	// Targets lists the finalized artifact paths that triggered the action.
	Targets []string
	// Env carries any further orchestrator variables (PROGNAME, ...).
	Env map[string]string
}

// Target returns the first target path, or "" when none were supplied.
func (e Event) Target() string {
	if len(e.Targets) == 0 {
		return ""
	}
	return e.Targets[0]
}

// lookup resolves a variable for target expansion.
func (e Event) lookup(name string) string {
	switch name {
	case VarProjectDir:
		return e.ProjectDir
	case VarBuildDir:
		return e.BuildDir
	}
	return e.Env[name]
}

// Action is a post-build callback.
type Action func(ev Event)

// Registrar is the registration surface a post action needs.
type Registrar interface {
	AddPostAction(target string, action Action)
}

type entry struct {
	target string
	action Action
}

// Table is an in-process action table implementing Registrar.
type Table struct {
	mu      sync.Mutex
	entries []entry
	logger  *slog.Logger
}

// NewTable creates an empty table. A nil logger uses slog.Default().
func NewTable(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{logger: logger}
}

// AddPostAction registers action to run after target is produced.
func (t *Table) AddPostAction(target string, action Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry{target: target, action: action})
}

// Len returns the number of registered actions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Fire runs, in registration order, every action whose expanded target matches
// one of ev.Targets. It returns the number of actions run. A panicking action
// is logged and does not stop the remaining ones.
func (t *Table) Fire(ev Event) int {
	t.mu.Lock()
	entries := append([]entry(nil), t.entries...)
	t.mu.Unlock()

	produced := make(map[string]bool, len(ev.Targets))
	for _, p := range ev.Targets {
		produced[filepath.Clean(p)] = true
	}

	ran := 0
	for _, e := range entries {
		expanded := ExpandTarget(e.target, ev)
		if !produced[filepath.Clean(expanded)] {
			t.logger.Debug("Post action not matched", logfields.Target(expanded))
			continue
		}
		t.run(e, expanded, ev)
		ran++
	}
	return ran
}

func (t *Table) run(e entry, expanded string, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Post action panicked",
				logfields.Target(expanded),
				logfields.Error(fmt.Errorf("%v", r)))
		}
	}()
	e.action(ev)
}

// ExpandTarget substitutes $VAR and ${VAR} references using the event.
func ExpandTarget(target string, ev Event) string {
	return os.Expand(target, ev.lookup)
}
