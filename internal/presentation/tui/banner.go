package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the boardgen banner with a gradient.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _                         _", "#818cf8"},
		{"| |__   ___   __ _ _ __ __| | __ _  ___ _ __", "#a78bfa"},
		{"| '_ \\ / _ \\ / _` | '__/ _` |/ _` |/ _ \\ '_ \\", "#c084fc"},
		{"| |_) | (_) | (_| | | | (_| | (_| |  __/ | | |", "#e879f9"},
		{"|_.__/ \\___/ \\__,_|_|  \\__,_|\\__, |\\___|_| |_|", "#f472b6"},
		{"                             |___/  " + strings.TrimSpace(version), "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StateLabel renders a generation state in its status color.
func StateLabel(state domain.GenerationState) string {
	p := termenv.ColorProfile()
	s := termenv.String(string(state))
	switch state {
	case domain.StateGenerating, domain.StateApplying:
		return s.Foreground(p.Color("#facc15")).Bold().String()
	case domain.StateComplete:
		return s.Foreground(p.Color("#4ade80")).String()
	case domain.StateFailed:
		return s.Foreground(p.Color("#f87171")).Bold().String()
	case domain.StateCanceled:
		return s.Foreground(p.Color("#94a3b8")).String()
	default:
		return s.String()
	}
}
