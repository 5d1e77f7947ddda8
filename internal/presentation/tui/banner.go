package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                          _    __ _",
	"  _ _ ___ _ __  ___ _ _| |_ / _| |_____ __ __",
	" | '_/ -_) '_ \\/ _ \\ '_|  _|  _| / _ \\ V  V /",
	" |_| \\___| .__/\\___/_|  \\__|_| |_\\___/\\_/\\_/",
	"         |_|",
}

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}

// PrintBanner writes the reportflow banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i%len(bannerColors)])))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
