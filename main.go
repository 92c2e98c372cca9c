package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const VERSION = "1.0.0"

func (i item) FilterValue() string { return i.title }

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	checkbox := "☐"
	if i.selected {
		checkbox = "◼"
	}

	detailLine := DetailStyle.Render(i.detail)
	str := fmt.Sprintf("%s %s", checkbox, i.title)

	fn := ItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprintf(w, "%s\n%s\n", detailLine, fn(str))
}

func newModel(cfg Config, deps editorDeps, inputFile string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = maxCaptionRunes

	session := &Session{}
	m := model{
		cfg:        cfg,
		logger:     deps.logger,
		spinner:    s,
		input:      input,
		loading:    true,
		loadingMsg: "Reading media metadata with ffprobe...",
		inputFile:  inputFile,
		card:       cfg.Card,
		session:    session,
		looper:     NewLooper(nil, deps.logger),
		history:    deps.history,
		width:      deps.width,
		playerCtx:  deps.playerCtx,
	}
	if m.playerCtx == nil {
		m.playerCtx = context.Background()
	}
	m.gen = session.Load(inputFile)
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		probeCmd(m.cfg, m.inputFile, m.gen),
		tickCmd(m.tickInterval()),
	)
}

func (m model) tickInterval() time.Duration {
	return time.Duration(m.cfg.Player.TickMS) * time.Millisecond
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.mode == modeStyle || m.mode == modeColor {
			m.picker.SetWidth(m.pickerWidth())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeCaption, modeUsername:
			return m.updateInput(msg)
		case modeStyle, modeColor:
			return m.updatePicker(msg)
		}
		return m.updateNormal(msg)

	case metadataLoadedMsg:
		if !m.session.MetadataLoaded(msg.gen, msg.duration) {
			m.logger.Debug("ignoring stale metadata", "gen", msg.gen)
			return m, nil
		}
		m.loading = false
		w, _ := m.session.Window()
		m.logger.Info("media ready", "file", m.inputFile, "kind", m.session.Kind().String(), "duration", msg.duration)
		if msg.project != nil {
			m.card = msg.project.Card
			m.statuses = append(m.statuses, "Restored saved card.")
			if m.session.Kind() == MediaVideo {
				w, _ = m.session.Restore(msg.project.Start, msg.project.End)
			}
		}
		if m.session.Kind() != MediaVideo {
			m.statuses = append(m.statuses, "Image loaded.")
			return m, nil
		}
		if w.NeedsTrim() {
			m.statuses = append(m.statuses, fmt.Sprintf("Clip is %s long, trim to %s or less.", formatClock(w.Duration), formatClock(w.MaxWidth)))
		} else {
			m.statuses = append(m.statuses, "Clip loaded.")
		}
		if !checkDependency(m.cfg.Player.Binary) {
			m.statuses = append(m.statuses, m.cfg.Player.Binary+" not found, preview disabled.")
			return m, nil
		}
		return m, startPlayerCmd(m.playerCtx, m.cfg, m.inputFile)

	case playerStartedMsg:
		m.player = msg.player
		m.looper = NewLooper(msg.player, m.logger)
		m.statuses = append(m.statuses, "Player ready.")
		return m, nil

	case loopTickMsg:
		cmds := []tea.Cmd{tickCmd(m.tickInterval())}
		if m.session.Playable() && m.looper.Looping() {
			w, _ := m.session.Window()
			cmds = append(cmds, loopTickCmd(m.looper, w))
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.statuses = append(m.statuses, msg.text)
		return m, nil

	case projectSavedMsg:
		m.statuses = append(m.statuses, "Saved card to "+msg.path)
		return m, nil

	case exportDoneMsg:
		m.loading = false
		m.statuses = append(m.statuses, "Card exported successfully.")
		m.statuses = append(m.statuses, "Saved output to "+msg.outputFile)
		return m, nil

	case errorMsg:
		m.logger.Error("editor error", "error", msg.err)
		m.statuses = append(m.statuses, msg.err.Error())
		m.errorMsg = msg.err.Error()
		m.loading = false
		if m.session.State() == StateMetadataPending {
			m.session.Reset()
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.loading || m.session.State() != StateReady {
		return m, nil
	}

	switch msg.String() {
	case "c":
		return m.startInput(modeCaption, m.card.Caption, "caption")
	case "u":
		return m.startInput(modeUsername, m.card.Username, "username")
	case "s":
		m.mode = modeStyle
		m.picker = newPicker(FrameStyles, m.card.Style, func(v string) string { return m.card.WithStyle(v).StyleName() }, m.pickerWidth())
		return m, nil
	case "k":
		m.mode = modeColor
		m.picker = newPicker(FrameColors, m.card.Color, func(v string) string {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(v)).Render("■■■")
		}, m.pickerWidth())
		return m, nil
	case "r":
		m.card = m.card.ToggleRotate()
		return m, nil
	case "w":
		w, _ := m.session.Window()
		return m, saveCmd(m.history, m.inputFile, m.card, w)
	case "e":
		w, _ := m.session.Window()
		m.loading = true
		m.loadingMsg = "Exporting card with ffmpeg..."
		job := ExportJob{Input: m.inputFile, Kind: m.session.Kind(), Window: w, Card: m.card}
		return m, tea.Batch(m.spinner.Tick, exportCmd(m.cfg, m.history, job))
	}

	if !m.session.Playable() {
		return m, nil
	}
	w, _ := m.session.Window()
	switch msg.String() {
	case "[":
		w, _ = m.session.SetStart(w.Start - 1)
	case "]":
		w, _ = m.session.SetStart(w.Start + 1)
	case "{":
		w, _ = m.session.SetEnd(w.End - 1)
	case "}":
		w, _ = m.session.SetEnd(w.End + 1)
	case "p":
		return m, previewCmd(m.looper, w)
	case "l":
		return m, loopingCmd(m.looper, !m.looper.Looping(), w)
	}
	return m, nil
}

func (m model) startInput(mode editorMode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.CharLimit = maxCaptionRunes
	if mode == modeUsername {
		m.input.CharLimit = maxUsernameRunes
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.mode == modeCaption {
			m.card = m.card.WithCaption(m.input.Value())
		} else {
			m.card = m.card.WithUsername(m.input.Value())
			if err := rememberUsername(m.card.Username); err != nil {
				m.logger.Warn("username not remembered", "error", err)
			}
		}
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		if i, ok := m.picker.SelectedItem().(item); ok {
			if m.mode == modeStyle {
				m.card = m.card.WithStyle(i.value)
			} else {
				m.card = m.card.WithColor(i.value)
			}
		}
		m.mode = modeNormal
		return m, nil
	case "esc", "q":
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m model) pickerWidth() int {
	if m.width <= 0 {
		return 64
	}
	return min(m.width, 64)
}

func (m model) View() string {
	if m.quitting {
		return styleOutput(m.statuses)
	}

	if m.errorMsg != "" && m.session.State() != StateReady {
		return styleOutput(m.statuses) + "\nPress 'q' to quit"
	}
	if m.loading {
		loadingText := fmt.Sprintf("%s%s", m.spinner.View(), m.loadingMsg)
		if len(m.statuses) > 0 {
			return styleOutput(m.statuses) + loadingText
		}
		return loadingText
	}

	var b strings.Builder
	b.WriteString(styleOutput(m.statuses))
	b.WriteString("\n")
	b.WriteString(m.cardView())
	b.WriteString("\n")

	if w, err := m.session.Window(); err == nil && m.session.Playable() {
		loop := ""
		if m.looper.Looping() {
			loop = SuccessStyle.Render("  looping")
		}
		b.WriteString(fmt.Sprintf("  Start: %s | End: %s | Length: %s%s\n",
			formatClock(w.Start), formatClock(w.End), formatClock(w.Width()), loop))
		b.WriteString("  " + timelineBar(w, m.pickerWidth()-4) + "\n")
	}

	switch m.mode {
	case modeCaption, modeUsername:
		b.WriteString("\n  " + m.input.View() + "\n")
		b.WriteString(DimTextStyle.Render("  enter save • esc cancel") + "\n")
	case modeStyle, modeColor:
		b.WriteString("\n" + m.picker.View() + "\n")
		b.WriteString(DimTextStyle.Render("  enter pick • esc cancel") + "\n")
	default:
		b.WriteString("\n" + DimTextStyle.Render(m.helpLine()) + "\n")
	}
	return b.String()
}

func (m model) cardView() string {
	caption := m.card.Caption
	if caption == "" {
		caption = DimTextStyle.Render("(no caption)")
	}
	handle := m.card.Handle()
	if handle == "" {
		handle = DimTextStyle.Render("(no username)")
	}
	rotate := "off"
	if m.card.Rotate {
		rotate = "on"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(handle),
		TextStyle.Render(caption),
		DimTextStyle.Render(fmt.Sprintf("%s frame • %s • rotate %s", m.card.StyleName(), m.card.Color, rotate)),
	)
	return cardFrameStyle(m.card).Render(body)
}

func (m model) helpLine() string {
	parts := []string{"c caption", "u username", "s style", "k color", "r rotate"}
	if m.session.Playable() {
		parts = append(parts, "[ ] start", "{ } end", "p preview", "l loop")
	}
	parts = append(parts, "w save", "e export", "q quit")
	return "  " + strings.Join(parts, " • ")
}

// shutdown stops any pending preview and closes the player.
func (m model) shutdown() {
	m.looper.Stop()
	if m.player != nil {
		if err := m.player.Close(); err != nil {
			m.logger.Warn("player did not close cleanly", "error", err)
		}
	}
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, BulletStyle.Render("└")+ErrorStyle.Render(err.Error()))
		}
		os.Exit(1)
	}
}
