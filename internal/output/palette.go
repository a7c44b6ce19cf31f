package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI codes used when a Palette is enabled.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[91m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiCyan   = "\033[96m"
)

// Palette wraps text in ANSI codes. The zero value is disabled and returns
// text unchanged, which is the CI-safe default.
type Palette struct {
	enabled bool
}

// NewPalette returns a palette that colours text when enabled is true.
func NewPalette(enabled bool) Palette {
	return Palette{enabled: enabled}
}

// Enabled reports whether p emits ANSI codes.
func (p Palette) Enabled() bool { return p.enabled }

func (p Palette) wrap(code, s string) string {
	if !p.enabled || s == "" {
		return s
	}
	return code + s + ansiReset
}

func (p Palette) Bold(s string) string   { return p.wrap(ansiBold, s) }
func (p Palette) Dim(s string) string    { return p.wrap(ansiDim, s) }
func (p Palette) Red(s string) string    { return p.wrap(ansiRed, s) }
func (p Palette) Green(s string) string  { return p.wrap(ansiGreen, s) }
func (p Palette) Yellow(s string) string { return p.wrap(ansiYellow, s) }
func (p Palette) Cyan(s string) string   { return p.wrap(ansiCyan, s) }

// ResolveColor decides once whether output to f is coloured. mode is
// "always", "never" or "auto"; auto colours only terminals.
func ResolveColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return ResolveColor("auto", f)
}
