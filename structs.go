package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

type metadataLoadedMsg struct {
	gen      uint64
	duration float64
	project  *Project
}

type playerStartedMsg struct {
	player *MPV
}

type errorMsg struct {
	err error
}

type statusMsg struct {
	text string
}

type loopTickMsg time.Time

type projectSavedMsg struct {
	path string
}

type exportDoneMsg struct {
	outputFile string
}

type editorMode int

const (
	modeNormal editorMode = iota
	modeCaption
	modeUsername
	modeStyle
	modeColor
)

type model struct {
	cfg        Config
	logger     *slog.Logger
	spinner    spinner.Model
	input      textinput.Model
	picker     list.Model
	mode       editorMode
	loading    bool
	loadingMsg string
	quitting   bool
	inputFile  string
	card       Card
	session    *Session
	gen        uint64
	looper     *Looper
	player     *MPV
	playerCtx  context.Context
	history    *History
	width      int
	errorMsg   string
	statuses   []string
}

type item struct {
	title    string
	detail   string
	value    string
	selected bool
}

type itemDelegate struct{}
