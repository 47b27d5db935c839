package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/fwpublish/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	ProjectDir string `short:"p" name:"project-dir" help:"Project root" default:"." type:"path" env:"PROJECT_DIR"`
	Artifact   string `arg:"" help:"Firmware image to follow" type:"path"`
}

// Run republishes on every rebuild until SIGINT or SIGTERM.
func (c *WatchCmd) Run(g *Global) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s := newSession(g)
	defer s.Close()

	w, err := watch.New(c.Artifact, g.Config.Watch.Debounce, func() {
		s.publisher.PostAction(c.ProjectDir, c.Artifact)
	}, s.logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
