package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPublishID  = "publish_id"
	KeyProject    = "project_dir"
	KeySource     = "source"
	KeyDest       = "dest"
	KeyTarget     = "target"
	KeyPath       = "path"
	KeyBytes      = "bytes"
	KeyDurationMS = "duration_ms"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PublishID(id string) slog.Attr   { return slog.String(KeyPublishID, id) }
func Project(dir string) slog.Attr    { return slog.String(KeyProject, dir) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Dest(p string) slog.Attr         { return slog.String(KeyDest, p) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Bytes(n int64) slog.Attr         { return slog.Int64(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
