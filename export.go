package main

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// stillSeconds is how long an image card plays once exported.
const stillSeconds = 5.0

// framePadding is the frame thickness in pixels for each style.
var framePadding = map[string]int{
	"classic":  40,
	"polaroid": 32,
	"film":     56,
	"minimal":  12,
}

// ExportJob describes one card render.
type ExportJob struct {
	Input  string
	Output string
	Kind   MediaKind
	Window MediaWindow
	Card   Card
}

// exportOutputPath places <base>_card.mp4 next to the input.
func exportOutputPath(inputFile string) string {
	basename := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	return filepath.Join(filepath.Dir(inputFile), basename+"_card.mp4")
}

// exportArgs builds the ffmpeg arguments for job.
func exportArgs(job ExportJob) []string {
	args := []string{"-y"}

	switch job.Kind {
	case MediaImage:
		args = append(args, "-loop", "1", "-t", formatSeconds(stillSeconds), "-i", job.Input)
	default:
		args = append(args,
			"-ss", formatSeconds(job.Window.Start),
			"-t", formatSeconds(job.Window.Width()),
			"-i", job.Input,
		)
	}

	args = append(args, "-vf", cardFilter(job.Card))
	if job.Kind == MediaImage {
		args = append(args, "-an")
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", job.Output)
	return args
}

// cardFilter frames the picture and draws the caption and handle.
func cardFilter(card Card) string {
	pad := framePadding[card.Style]
	if pad == 0 {
		pad = framePadding["classic"]
	}
	bottom := pad
	if card.Style == "polaroid" {
		bottom = pad * 4
	}
	color := strings.TrimPrefix(card.Color, "#")
	textColor := "black"
	if isDark(color) {
		textColor = "white"
	}

	var filters []string
	filters = append(filters, "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	if card.Rotate {
		filters = append(filters, "rotate=a=0.2*sin(2*PI*t/6):fillcolor=0x"+color)
	}
	filters = append(filters, fmt.Sprintf("pad=iw+%d:ih+%d:%d:%d:color=0x%s", pad*2, pad+bottom, pad, pad, color))

	if card.Caption != "" {
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontcolor=%s:fontsize=h/28:x=(w-text_w)/2:y=h-%d+(%d-text_h)/2",
			escapeDrawtext(card.Caption), textColor, bottom, bottom,
		))
	}
	if handle := card.Handle(); handle != "" {
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='%s':fontcolor=%s:fontsize=h/40:x=%d:y=(%d-text_h)/2",
			escapeDrawtext(handle), textColor, pad, pad,
		))
	}
	return strings.Join(filters, ",")
}

// escapeDrawtext quotes characters that drawtext or the filter graph treat
// as syntax. The result goes inside a single-quoted option value, which ffmpeg
// unescapes twice (graph, then option) before drawtext expands it.
func escapeDrawtext(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\\\`,
		`'`, `'\\\''`,
		`:`, `\:`,
		`%`, `\\%`,
		`,`, `\,`,
	)
	return replacer.Replace(s)
}

func isDark(hex string) bool {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return false
	}
	return 299*r+587*g+114*b < 128000
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}

// exportCard runs ffmpeg for job and returns the output path.
func exportCard(ctx context.Context, ffmpeg string, job ExportJob) (string, error) {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if job.Output == "" {
		job.Output = exportOutputPath(job.Input)
	}
	if job.Kind == MediaVideo && job.Window.Width() <= 0 {
		return "", fmt.Errorf("nothing to export: empty window")
	}

	cmd := exec.CommandContext(ctx, ffmpeg, exportArgs(job)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to export card: %w: %s", err, lastLine(string(output)))
	}
	return job.Output, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
