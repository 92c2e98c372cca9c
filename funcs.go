package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func probeCmd(cfg Config, inputFile string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		var duration float64
		if MediaKindOf(inputFile) == MediaVideo {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			result, err := probeMedia(ctx, cfg.FFmpeg.FFprobe, inputFile)
			if err != nil {
				return errorMsg{err: err}
			}
			if _, ok := result.VideoStream(); !ok {
				return errorMsg{err: fmt.Errorf("no video stream in %s", inputFile)}
			}
			duration = result.DurationSeconds()
		}

		msg := metadataLoadedMsg{gen: gen, duration: duration}
		project, ok, err := LoadProject(inputFile)
		if err != nil {
			return errorMsg{err: err}
		}
		if ok {
			msg.project = &project
		}
		return msg
	}
}

// startPlayerCmd launches mpv bound to ctx, so the process dies with the
// editor even if it quits before the player is ready.
func startPlayerCmd(ctx context.Context, cfg Config, inputFile string) tea.Cmd {
	return func() tea.Msg {
		player, err := StartMPV(ctx, cfg.Player.Binary, cfg.Player.SocketDir, inputFile)
		if err != nil {
			return errorMsg{err: err}
		}
		if ctx.Err() != nil {
			_ = player.Close()
			return errorMsg{err: ctx.Err()}
		}
		return playerStartedMsg{player: player}
	}
}

func previewCmd(looper *Looper, w MediaWindow) tea.Cmd {
	return func() tea.Msg {
		if err := looper.Preview(context.Background(), w); err != nil {
			if errors.Is(err, ErrPlayerUnavailable) {
				return statusMsg{text: "Player is still starting."}
			}
			return errorMsg{err: err}
		}
		return statusMsg{text: fmt.Sprintf("Previewing %s - %s", formatClock(w.Start), formatClock(w.End))}
	}
}

func loopingCmd(looper *Looper, on bool, w MediaWindow) tea.Cmd {
	return func() tea.Msg {
		if err := looper.SetLooping(context.Background(), on, w); err != nil {
			return errorMsg{err: err}
		}
		if on {
			return statusMsg{text: "Looping " + formatClock(w.Start) + " - " + formatClock(w.End)}
		}
		return statusMsg{text: "Loop stopped."}
	}
}

func loopTickCmd(looper *Looper, w MediaWindow) tea.Cmd {
	return func() tea.Msg {
		looper.Tick(context.Background(), w)
		return nil
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return loopTickMsg(t)
	})
}

func saveCmd(history *History, inputFile string, card Card, w MediaWindow) tea.Cmd {
	return func() tea.Msg {
		path, err := SaveProject(inputFile, card, w)
		if err != nil {
			return errorMsg{err: err}
		}
		if history != nil {
			if _, err := history.Record(context.Background(), inputFile, card, w); err != nil {
				return errorMsg{err: err}
			}
		}
		return projectSavedMsg{path: path}
	}
}

func exportCmd(cfg Config, history *History, job ExportJob) tea.Cmd {
	return func() tea.Msg {
		outputFile, err := exportCard(context.Background(), cfg.FFmpeg.FFmpeg, job)
		if err != nil {
			return errorMsg{err: err}
		}
		if history != nil {
			if _, err := history.Record(context.Background(), job.Input, job.Card, job.Window); err != nil {
				return errorMsg{err: err}
			}
		}
		return exportDoneMsg{outputFile: outputFile}
	}
}

func newPicker(values []string, current string, label func(string) string, width int) list.Model {
	items := make([]list.Item, len(values))
	selectedIndex := 0
	for i, value := range values {
		items[i] = item{title: label(value), detail: value, value: value, selected: value == current}
		if value == current {
			selectedIndex = i
		}
	}

	l := list.New(items, itemDelegate{}, width, 12)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Select(selectedIndex)
	return l
}

// timelineBar draws the media duration as a track of width cells with the
// window highlighted.
func timelineBar(w MediaWindow, width int) string {
	if width <= 0 || w.Duration <= 0 {
		return ""
	}
	from := int(math.Floor(w.Start / w.Duration * float64(width)))
	to := int(math.Ceil(w.End / w.Duration * float64(width)))
	from = max(0, min(from, width))
	to = max(from, min(to, width))

	return TrackStyle.Render(strings.Repeat("─", from)) +
		WindowStyle.Render(strings.Repeat("━", to-from)) +
		TrackStyle.Render(strings.Repeat("─", width-to))
}

// formatClock renders seconds as MM:SS.s.
func formatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds-float64(minutes*60))
}

func styleOutput(statuses []string) string {
	var styledStatuses []string
	for i, status := range statuses {
		bullet := "├"
		if i == len(statuses)-1 {
			bullet = "└"
		}
		styledStatuses = append(styledStatuses, BulletStyle.Render(bullet)+TextStyle.Render(status))
	}
	return strings.Join(styledStatuses, "\n") + "\n"
}

func checkDependency(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
