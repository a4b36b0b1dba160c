package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPage       = "page"
	KeyReference  = "reference"
	KeyTarget     = "target"
	KeySourceRoot = "source_root"
	KeyOutput     = "output"
	KeyBuildID    = "build.id"
	KeyDurationMS = "duration_ms"
	KeyWarnings   = "warnings"
	KeySlot       = "slot"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Page(p string) slog.Attr          { return slog.String(KeyPage, p) }
func Reference(r string) slog.Attr     { return slog.String(KeyReference, r) }
func Target(t string) slog.Attr        { return slog.String(KeyTarget, t) }
func SourceRoot(r string) slog.Attr    { return slog.String(KeySourceRoot, r) }
func Output(o string) slog.Attr        { return slog.String(KeyOutput, o) }
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Warnings(n int) slog.Attr         { return slog.Int(KeyWarnings, n) }
func Slot(name string) slog.Attr       { return slog.String(KeySlot, name) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
