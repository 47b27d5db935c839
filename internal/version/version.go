package version

// Version is the fwpublish release, set via build-time ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/fwpublish/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line shown by --version.
func String() string {
	return "fwpublish " + Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
