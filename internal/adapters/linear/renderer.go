// Package linear prints batch records as one line each, in the order they
// arrive, followed by a summary.
package linear

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/ui/output"
	"go.trai.ch/planar/internal/ui/style"
)

// Summary counts the records seen by a Renderer.
type Summary struct {
	Total     int
	Planar    int
	NonPlanar int
	Failed    int
	Cached    int
	Shared    int
}

// Renderer writes records to stdout and the summary to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer

	planar    lipgloss.Style
	nonPlanar lipgloss.Style
	failed    lipgloss.Style
	muted     lipgloss.Style

	mu      sync.Mutex
	summary Summary
}

// NewRenderer creates a new Renderer. Nil writers select the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	re := lipgloss.NewRenderer(stdout)
	re.SetColorProfile(output.ColorProfile())

	return &Renderer{
		stdout:    stdout,
		stderr:    stderr,
		planar:    re.NewStyle().Foreground(style.Green),
		nonPlanar: re.NewStyle().Foreground(style.Red).Bold(true),
		failed:    re.NewStyle().Foreground(style.Yellow),
		muted:     re.NewStyle().Foreground(style.Slate),
	}
}

// Render prints one record. label names the input, e.g. "k5.edges:3".
func (r *Renderer) Render(rec domain.Record, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.count(rec)
	_, _ = fmt.Fprintln(r.stdout, r.line(rec, label))
}

func (r *Renderer) count(rec domain.Record) {
	r.summary.Total++
	switch {
	case rec.Error != nil:
		r.summary.Failed++
		return
	case rec.Result.IsPlanar:
		r.summary.Planar++
	default:
		r.summary.NonPlanar++
	}
	if rec.Shared {
		r.summary.Shared++
	} else if rec.Source == domain.SourceCache {
		r.summary.Cached++
	}
}

func (r *Renderer) line(rec domain.Record, label string) string {
	if rec.Error != nil {
		return r.failed.Render(fmt.Sprintf("%s %s %s: %s", style.Warning, label, rec.Error.Kind, rec.Error.Message))
	}

	res := rec.Result
	size := r.muted.Render(fmt.Sprintf("· %d nodes, %d edges · %s", len(res.Nodes), len(res.Edges), source(rec)))
	if res.IsPlanar {
		return r.planar.Render(style.Check+" "+label+" planar") + " " + size
	}

	head := fmt.Sprintf("%s %s non-planar", style.Cross, label)
	if obs := res.Obstruction; obs != nil {
		head += fmt.Sprintf(" (%s on %s)", obs.Kind, strings.Join(obs.Nodes, " "))
	}
	return r.nonPlanar.Render(head) + " " + size
}

func source(rec domain.Record) string {
	if rec.Shared {
		return "shared"
	}
	return string(rec.Source)
}

// Summary returns the counts so far.
func (r *Renderer) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// PrintSummary writes the closing summary line to stderr.
func (r *Renderer) PrintSummary(elapsed time.Duration) {
	s := r.Summary()
	msg := fmt.Sprintf("%d graph(s): %d planar, %d non-planar, %d failed (%d cached, %d shared) in %s",
		s.Total, s.Planar, s.NonPlanar, s.Failed, s.Cached, s.Shared, elapsed.Round(time.Millisecond))
	_, _ = fmt.Fprintln(r.stderr, r.muted.Render(msg))
}
