package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/fwpublish/internal/hook"
	"git.home.luguber.info/inful/fwpublish/internal/logfields"
	"git.home.luguber.info/inful/fwpublish/internal/publish"
)

// PostBuildCmd implements the 'post-build' command. It is meant to be called
// from the orchestrator's extra script with the variables it knows, e.g.
//
//	fwpublish post-build --project-dir $PROJECT_DIR --build-dir $BUILD_DIR --progname $PROGNAME
type PostBuildCmd struct {
	ProjectDir string   `short:"p" name:"project-dir" help:"Project root" default:"." type:"path" env:"PROJECT_DIR"`
	BuildDir   string   `short:"b" name:"build-dir" help:"Orchestrator build directory" required:"" type:"path" env:"BUILD_DIR"`
	Progname   string   `name:"progname" help:"Program name of the firmware target" default:"firmware" env:"PROGNAME"`
	Target     []string `name:"target" help:"Produced target paths (default: $BUILD_DIR/$PROGNAME.bin)" type:"path"`
}

// Run fires the action table for the produced targets. It never fails on
// publishing errors; those are reported by the action itself.
func (c *PostBuildCmd) Run(g *Global) error {
	s := newSession(g)
	defer s.Close()

	table := hook.NewTable(s.logger)
	publish.Register(table, s.publisher)

	ev := c.event()
	if ran := table.Fire(ev); ran == 0 {
		s.logger.Warn("No post-build action matched the produced targets", logfields.Target(ev.Target()))
	}
	return nil
}

func (c *PostBuildCmd) event() hook.Event {
	ev := hook.Event{
		ProjectDir: c.ProjectDir,
		BuildDir:   c.BuildDir,
		Targets:    c.Target,
		Env:        map[string]string{hook.VarProgName: c.Progname},
	}
	if len(ev.Targets) == 0 {
		ev.Targets = []string{filepath.Join(c.BuildDir, c.Progname+".bin")}
	}
	return ev
}
