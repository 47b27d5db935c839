package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/fwpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/fwpublish/internal/hook"
	"git.home.luguber.info/inful/fwpublish/internal/logfields"
	"git.home.luguber.info/inful/fwpublish/internal/manifest"
	"git.home.luguber.info/inful/fwpublish/internal/metrics"
	"git.home.luguber.info/inful/fwpublish/internal/notify"
)

// Fixed layout of the latest-firmware slot.
const (
	BuildDirName = "build"
	LatestName   = "firmware_latest.bin"
)

// DefaultTarget is the orchestrator target the publisher is bound to.
const DefaultTarget = "$BUILD_DIR/${PROGNAME}.bin"

const notifyTimeout = 10 * time.Second

// Result describes a successful publish.
type Result struct {
	ID          string
	ProjectDir  string
	Source      string
	Destination string
	Size        int64
	Duration    time.Duration
	PublishedAt time.Time
	// Manifest is nil when the sidecar is disabled or could not be written.
	Manifest *manifest.Manifest
}

// Publisher copies build artifacts into the latest slot.
type Publisher struct {
	logger   *slog.Logger
	out      io.Writer
	recorder metrics.Recorder
	notifier notify.Notifier
	manifest bool
	now      func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithOutput sets where the console status line is written (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(p *Publisher) {
		if w != nil {
			p.out = w
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithNotifier sets the downstream notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Publisher) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithManifest toggles the firmware_latest.json sidecar.
func WithManifest(enabled bool) Option {
	return func(p *Publisher) { p.manifest = enabled }
}

// New creates a Publisher. The manifest is written unless disabled.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		logger:   slog.Default(),
		out:      os.Stdout,
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		manifest: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildDir returns <projectRoot>/build.
func BuildDir(projectRoot string) string {
	return filepath.Join(projectRoot, BuildDirName)
}

// DestPath returns <projectRoot>/build/firmware_latest.bin.
func DestPath(projectRoot string) string {
	return filepath.Join(BuildDir(projectRoot), LatestName)
}

// Publish copies artifactPath to the latest slot under projectRoot, creating
// the build directory when missing. The manifest and notification steps run
// only after a successful copy and their failures are logged, not returned.
func (p *Publisher) Publish(projectRoot, artifactPath string) (*Result, error) {
	start := p.now()
	res, err := p.publish(projectRoot, artifactPath)
	elapsed := p.now().Sub(start)
	p.recorder.ObservePublishDuration(elapsed)
	if err != nil {
		p.recorder.IncPublishOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	res.Duration = elapsed
	p.recorder.IncPublishOutcome(metrics.OutcomeSuccess)
	p.recorder.AddPublishedBytes(res.Size)

	p.writeManifest(res)
	p.notify(res)
	return res, nil
}

func (p *Publisher) publish(projectRoot, artifactPath string) (*Result, error) {
	if artifactPath == "" {
		return nil, ferrors.ValidationError("no artifact path supplied").Build()
	}
	buildDir := BuildDir(projectRoot)
	if err := ensureDir(buildDir); err != nil {
		return nil, err
	}

	dest := DestPath(projectRoot)
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	n, err := copyFile(p.logger, artifactPath, dest)
	if err != nil {
		return nil, err
	}
	return &Result{
		ID:          uuid.NewString(),
		ProjectDir:  projectRoot,
		Source:      artifactPath,
		Destination: dest,
		Size:        n,
		PublishedAt: p.now(),
	}, nil
}

func (p *Publisher) writeManifest(res *Result) {
	if !p.manifest {
		return
	}
	m, err := manifest.Build(manifest.Input{
		ID:          res.ID,
		ProjectDir:  res.ProjectDir,
		Source:      res.Source,
		Destination: res.Destination,
		PublishedAt: res.PublishedAt,
	})
	if err == nil {
		_, err = manifest.Write(filepath.Dir(res.Destination), m)
	}
	if err != nil {
		p.recorder.IncSidecarFailure("manifest")
		p.logger.Warn("Failed to write firmware manifest", logfields.PublishID(res.ID), logfields.Error(err))
		return
	}
	res.Manifest = m
}

func (p *Publisher) notify(res *Result) {
	ev := notify.Event{
		ID:          res.ID,
		Project:     res.ProjectDir,
		Destination: res.Destination,
		Size:        res.Size,
		PublishedAt: res.PublishedAt.UTC(),
	}
	if res.Manifest != nil {
		ev.BLAKE3 = res.Manifest.BLAKE3
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := p.notifier.Notify(ctx, ev); err != nil {
		p.recorder.IncSidecarFailure("notify")
		p.logger.Warn("Failed to notify publish", logfields.PublishID(res.ID), logfields.Error(err))
	}
}

// PostAction is the hook body: publish, print the status line, swallow errors.
//
//nolint:forbidigo // the status line is the user-facing contract
func (p *Publisher) PostAction(projectRoot, artifactPath string) {
	res, err := p.Publish(projectRoot, artifactPath)
	if err != nil {
		fmt.Fprintf(p.out, "Error copying firmware: %v\n", err)
		attrs := []any{logfields.Project(projectRoot), logfields.Source(artifactPath), logfields.Error(err)}
		if classified, ok := ferrors.AsClassified(err); ok {
			attrs = append(attrs, slog.String("category", string(classified.Category())))
		}
		p.logger.Error("Firmware publish failed", attrs...)
		return
	}
	fmt.Fprintf(p.out, "Firmware copied to: %s\n", res.Destination)
	p.logger.Info("Firmware published",
		logfields.PublishID(res.ID),
		logfields.Source(res.Source),
		logfields.Dest(res.Destination),
		logfields.Bytes(res.Size),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
}

// Action adapts PostAction to the orchestrator's callback signature.
func (p *Publisher) Action() hook.Action {
	return func(ev hook.Event) {
		p.PostAction(ev.ProjectDir, ev.Target())
	}
}

// Register binds p to DefaultTarget on reg.
func Register(reg hook.Registrar, p *Publisher) {
	reg.AddPostAction(DefaultTarget, p.Action())
}
