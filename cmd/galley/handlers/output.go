package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

func (o *Options) validate() error {
	switch o.Output {
	case "", OutputText, OutputJSON:
		return nil
	}
	return errdefs.InvalidInput("unknown output format %q (want text or json)", o.Output)
}

// ReportedError is returned after the failure was already written to
// stdout. main prints nothing more for it.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already rendered.
func IsReported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}

// Palette shared by all renderers.
var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	failStyle    = lipgloss.NewStyle().Foreground(colorRed)
	warnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// emit writes v as JSON, or the text produced by render.
func (a *app) emit(v any, render func() string) error {
	if a.opts.JSON() {
		return writeJSON(a.out, v)
	}
	_, err := io.WriteString(a.out, render())
	return err
}

// fail renders err in JSON mode so scripted callers always get a payload.
func (a *app) fail(err error) error {
	if err == nil || !a.opts.JSON() || IsReported(err) {
		return err
	}
	if werr := writeJSON(a.out, map[string]any{"error": errdefs.PayloadOf(err)}); werr != nil {
		return err
	}
	return &ReportedError{Err: err}
}

// run builds the app and renders any failure of fn.
func run(ctx context.Context, opts *Options, fn func(*app) error) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return (&app{opts: opts, out: stdout}).fail(err)
	}
	return a.fail(fn(a))
}

func title(s string) string {
	return titleStyle.Render("  "+s) + "\n" + dimStyle.Render("  "+strings.Repeat("═", 30)) + "\n"
}

func section(s string) string {
	return "\n" + sectionStyle.Render("  "+s) + "\n" + dimStyle.Render("  "+strings.Repeat("─", 35)) + "\n"
}

func row(label, value string) string {
	return fmt.Sprintf("    %-14s %s\n", label+":", value)
}
