package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maastricht-university/lipsync-pipeline/history"
	"github.com/maastricht-university/lipsync-pipeline/orchestrator"
)

var (
	colorAccent = lipgloss.Color("#8B5CF6")
	colorMuted  = lipgloss.Color("#6B7280")
	colorWarn   = lipgloss.Color("#F59E0B")
	colorError  = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dimStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle = dimStyle.Width(14)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderSummary(w io.Writer, res *orchestrator.Result) {
	s := res.Summary
	mode := s.Mode
	if mode == "fallback" {
		mode = warnStyle.Render(mode)
	}
	top := make([]string, 0, len(s.Top))
	for _, t := range s.Top {
		top = append(top, fmt.Sprintf("%s %d (%.1f%%)", t.Viseme, t.Count, t.Percent))
	}

	lines := []string{
		titleStyle.Render("Viseme summary"),
		row("session", res.SessionID),
		row("mode", mode),
		row("frames", fmt.Sprint(s.FrameCount)),
		row("duration", fmt.Sprintf("%.2fs", s.Duration)),
		row("visemes", strings.Join(s.Unique, " ")),
		row("top", strings.Join(top, ", ")),
	}
	if s.LaughFrames > 0 {
		lines = append(lines, row("laughter", fmt.Sprintf("%d frames, mean %.2f", s.LaughFrames, s.MeanLaugh)))
	}
	for _, o := range res.Outputs {
		lines = append(lines, row("output", o))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

func renderRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no runs recorded"))
		return
	}
	fmt.Fprintln(w, titleStyle.Render("Recent runs"))
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-8s %5d frames %7.2fs  %s\n",
			dimStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
			r.Mode, r.FrameCount, r.Duration, r.AudioPath)
	}
}
