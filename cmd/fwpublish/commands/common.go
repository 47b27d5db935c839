package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fwpublish/internal/config"
	"git.home.luguber.info/inful/fwpublish/internal/logfields"
	"git.home.luguber.info/inful/fwpublish/internal/metrics"
	"git.home.luguber.info/inful/fwpublish/internal/notify"
	"git.home.luguber.info/inful/fwpublish/internal/publish"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Config *config.Config
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"fwpublish.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Publish   PublishCmd   `cmd:"" help:"Copy a firmware image to build/firmware_latest.bin"`
	PostBuild PostBuildCmd `cmd:"" name:"post-build" help:"Run registered post-build actions for a produced target"`
	Watch     WatchCmd     `cmd:"" help:"Republish the firmware image whenever it is rebuilt"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; loads configuration and sets up logging once.
func (c *CLI) AfterApply(g *Global) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: cfg.Logging.EffectiveLevel(c.Verbose)}
	var handler slog.Handler
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	g.Logger = slog.New(handler)
	g.Config = cfg
	slog.SetDefault(g.Logger)
	return nil
}

// session bundles a configured publisher with the resources it holds.
type session struct {
	publisher *publish.Publisher
	notifier  notify.Notifier
	recorder  *metrics.PrometheusRecorder
	textfile  string
	logger    *slog.Logger
}

// newSession wires a publisher from configuration. An unreachable NATS server
// degrades to no notification rather than failing the publish.
func newSession(g *Global) *session {
	cfg := g.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &session{notifier: notify.NoopNotifier{}, logger: logger, textfile: cfg.Metrics.Textfile}
	opts := []publish.Option{
		publish.WithLogger(logger),
		publish.WithManifest(cfg.Manifest.IsEnabled()),
	}
	if cfg.Notify.Enabled() {
		n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			logger.Warn("Publish notifications disabled", logfields.Error(err))
		} else {
			s.notifier = n
		}
	}
	opts = append(opts, publish.WithNotifier(s.notifier))
	if s.textfile != "" {
		s.recorder = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, publish.WithRecorder(s.recorder))
	}
	s.publisher = publish.New(opts...)
	return s
}

// Close flushes metrics and releases the notifier.
func (s *session) Close() {
	if s.recorder != nil {
		if err := s.recorder.WriteTextfile(s.textfile); err != nil {
			s.logger.Warn("Failed to write metrics textfile", logfields.Path(s.textfile), logfields.Error(err))
		}
	}
	if err := s.notifier.Close(); err != nil {
		s.logger.Warn("Failed to close notifier", logfields.Error(err))
	}
}
