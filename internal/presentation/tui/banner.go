package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"                  _                ", "#38bdf8"},
	{"  _ __  ___  __| |_ __ _   _ _ __ ", "#22d3ee"},
	{" | '_ \\/ __|/ _` | '__| | | | '_ \\", "#2dd4bf"},
	{" | |_) \\__ \\ (_| | |  | |_| | | | |", "#34d399"},
	{" | .__/|___/\\__,_|_|   \\__,_|_| |_|", "#4ade80"},
	{" |_|", "#a3e635"},
}

// PrintBanner writes the psdrun banner and version to w, colored for the
// terminal's profile.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
