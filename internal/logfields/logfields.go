package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyFile        = "file"
	KeyLanguage    = "language"
	KeyCommonName  = "common_name"
	KeyKind        = "kind"
	KeyTheme       = "theme"
	KeyCount       = "count"
	KeyWorkers     = "workers"
	KeyBuildID     = "build_id"
	KeyDigest      = "digest"
	KeyRevision    = "revision"
	KeyConverter   = "converter"
	KeyFingerprint = "fingerprint"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyAddr        = "addr"
	KeyEvent       = "event"
	KeyState       = "state"
	KeyStderr      = "stderr"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func File(f string) slog.Attr            { return slog.String(KeyFile, f) }
func Language(l string) slog.Attr        { return slog.String(KeyLanguage, l) }
func CommonName(n string) slog.Attr      { return slog.String(KeyCommonName, n) }
func Kind(k string) slog.Attr            { return slog.String(KeyKind, k) }
func Theme(t string) slog.Attr           { return slog.String(KeyTheme, t) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Workers(n int) slog.Attr            { return slog.Int(KeyWorkers, n) }
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Digest(d string) slog.Attr          { return slog.String(KeyDigest, d) }
func Revision(r string) slog.Attr        { return slog.String(KeyRevision, r) }
func Converter(name string) slog.Attr    { return slog.String(KeyConverter, name) }
func Fingerprint(fp string) slog.Attr    { return slog.String(KeyFingerprint, fp) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func Stderr(s string) slog.Attr          { return slog.String(KeyStderr, s) }
func Addr(a string) slog.Attr            { return slog.String(KeyAddr, a) }
func Event(e string) slog.Attr           { return slog.String(KeyEvent, e) }
func State(s string) slog.Attr           { return slog.String(KeyState, s) }
func DurationMS(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
