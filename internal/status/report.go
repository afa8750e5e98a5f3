package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Policy selects how a Reporter renders a failed code.
type Policy int

const (
	// Detailed prints the structured diagnostic followed by the caller's
	// failure message.
	Detailed Policy = iota
	// Plain prints only the caller's failure message.
	Plain
)

func (p Policy) String() string {
	switch p {
	case Detailed:
		return "detailed"
	case Plain:
		return "plain"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value onto a Policy. An empty value
// selects Detailed.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "detailed":
		return Detailed, nil
	case "plain":
		return Plain, nil
	default:
		return Detailed, fmt.Errorf("unknown report policy %q", raw)
	}
}

// Reporter prints operation outcomes for humans.
type Reporter struct {
	out     io.Writer
	failure lipgloss.Style
	success lipgloss.Style
}

// NewReporter writes to w. Colour is only emitted when color is true and w
// is a terminal that supports it.
func NewReporter(w io.Writer, color bool) *Reporter {
	renderer := lipgloss.NewRenderer(w)
	if !color {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Reporter{
		out:     w,
		failure: renderer.NewStyle().Foreground(lipgloss.Color("1")),
		success: renderer.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Report dispatches to Detailed or Plain.
func (r *Reporter) Report(policy Policy, code Code, success, failure string) {
	if policy == Plain {
		r.Plain(code, success, failure)
		return
	}
	r.Detailed(code, success, failure)
}

// Detailed prints the diagnostic for an error code plus the optional
// failure message, or the success message.
func (r *Reporter) Detailed(code Code, success, failure string) {
	if code.IsError() {
		r.Error(code, failure)
		return
	}
	r.Success(success)
}

// Plain prints only the caller supplied message for either outcome.
func (r *Reporter) Plain(code Code, success, failure string) {
	if code.IsError() {
		r.Failure(failure)
		return
	}
	r.Success(success)
}

// Error prints the bracketed diagnostic for code and, when message is not
// empty, a continuation line with message.
func (r *Reporter) Error(code Code, message string) {
	if !code.IsError() {
		return
	}
	fmt.Fprintln(r.out, r.failure.Render("["+code.Describe()+"]"))
	if message != "" {
		fmt.Fprintln(r.out, r.failure.Render("-->")+" "+message)
	}
}

// Failure prints message as an error line.
func (r *Reporter) Failure(message string) {
	fmt.Fprintln(r.out, r.failure.Render(message))
}

// Success prints message as a success line.
func (r *Reporter) Success(message string) {
	fmt.Fprintln(r.out, r.success.Render(message))
}
