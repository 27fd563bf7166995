package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the leadchat banner followed by the widget profile line.
func PrintBanner(w io.Writer, profile string) {
	out := termenv.NewOutput(w)
	// Green gradient matching the hand-off button.
	lines := []struct{ text, color string }{
		{" _               _      _           _   ", "#86efac"},
		{"| | ___  __ _  __| | ___| |__   __ _| |_ ", "#4ade80"},
		{"| |/ _ \\/ _` |/ _` |/ __| '_ \\ / _` | __|", "#22c55e"},
		{"| |  __/ (_| | (_| | (__| | | | (_| | |_ ", "#16a34a"},
		{"|_|\\___|\\__,_|\\__,_|\\___|_| |_|\\__,_|\\__|", "#15803d"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if profile != "" {
		fmt.Fprintln(w, out.String("  chatting with "+profile).Faint())
	}
	fmt.Fprintln(w)
}
