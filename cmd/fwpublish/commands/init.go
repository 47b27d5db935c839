package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/fwpublish/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (c *InitCmd) Run(_ *Global, root *CLI) error {
	slog.Info("Initializing configuration", "path", root.Config, "force", c.Force)
	return config.Init(root.Config, c.Force)
}
