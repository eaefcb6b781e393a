package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
	}
}

// Handle implements the Handler interface - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case PathCheckBegin:
		return fmt.Sprintf("%s %s Path check %v => %v over %d automaton states",
			latency,
			f.colorize("===", color.FgYellow),
			event.Data["start"],
			event.Data["end"],
			event.Data["automaton.states"])

	case PathCheckProbe:
		return fmt.Sprintf("%s   probe %v state %v via %v, %s",
			latency,
			event.Data["node"],
			event.Data["state"],
			event.Data["transition"],
			f.colorizeCount("edges", intValue(event.Data["edges.scanned"])))

	case PathCheckComplete:
		if errMsg, failed := event.Data["error"]; failed {
			return fmt.Sprintf("%s %s Path check failed: %v",
				latency,
				f.colorize("✗", color.FgRed),
				errMsg)
		}
		verdict := f.colorize("no path", color.FgRed)
		if found, _ := event.Data["found"].(bool); found {
			verdict = f.colorize("path found", color.FgGreen)
		}
		return fmt.Sprintf("%s %s Path check done: %s after %s, %s",
			latency,
			f.colorize("===", color.FgGreen),
			verdict,
			f.colorizeCount("probes", intValue(event.Data["index.probes"])),
			f.colorizeCount("states", intValue(event.Data["states.visited"])))

	case ErrorUnboundVariable, ErrorBackend:
		return fmt.Sprintf("%s %s %s: %v",
			latency,
			f.colorize("✗", color.FgRed),
			event.Name,
			event.Data["error"])

	default:
		return ""
	}
}

// formatLatency formats duration with appropriate units and colors
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	// Use microseconds for sub-millisecond durations
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with its label
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch strings.ToLower(label) {
	case "probes":
		return color.CyanString(text)
	case "states":
		return color.MagentaString(text)
	case "edges":
		return color.BlueString(text)
	default:
		return text
	}
}

func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}

// ConsoleHandler returns a handler that prints to stdout
func ConsoleHandler() Handler {
	formatter := NewOutputFormatter(os.Stdout)
	return formatter.Handle
}
