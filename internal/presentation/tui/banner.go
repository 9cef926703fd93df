package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the eventstorm banner to w, colored with the sticky-note
// palette when the terminal supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"  ___             _   ___ _                  ", "#ffb74d"},
		{" | __|_ _____ _ _| |_/ __| |_ ___ _ _ _ __   ", "#64b5f6"},
		{" | _|\\ V / -_) ' \\  _\\__ \\  _/ _ \\ '_| '  \\  ", "#fff176"},
		{" |___|\\_/\\___|_||_\\__|___/\\__\\___/_| |_|_|_| ", "#ce93d8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
