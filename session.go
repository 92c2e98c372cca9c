package main

import (
	"errors"
	"fmt"
)

// SessionState tracks where a loaded media file is in its metadata lifecycle.
type SessionState int

const (
	StateUnloaded SessionState = iota
	StateMetadataPending
	StateReady
)

func (s SessionState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateMetadataPending:
		return "metadata pending"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrNotReady = errors.New("media not ready")

// Session owns the media window for the file currently open in the editor.
// Window edits are only accepted once metadata has loaded.
type Session struct {
	state  SessionState
	path   string
	kind   MediaKind
	gen    uint64
	window MediaWindow
}

// Load discards the current media and waits for metadata of path. The
// returned generation must be passed to MetadataLoaded.
func (s *Session) Load(path string) uint64 {
	s.gen++
	s.state = StateMetadataPending
	s.path = path
	s.kind = MediaKindOf(path)
	s.window = MediaWindow{}
	return s.gen
}

// MetadataLoaded moves a pending session to Ready. Results for an older
// load are ignored and reported as false.
func (s *Session) MetadataLoaded(gen uint64, duration float64) bool {
	if s.state != StateMetadataPending || gen != s.gen {
		return false
	}
	if s.kind == MediaImage {
		duration = 0
	}
	s.window = NewMediaWindow(duration)
	s.state = StateReady
	return true
}

// Reset returns the session to Unloaded.
func (s *Session) Reset() {
	s.gen++
	s.state = StateUnloaded
	s.path = ""
	s.kind = MediaUnknown
	s.window = MediaWindow{}
}

func (s *Session) State() SessionState { return s.state }
func (s *Session) Path() string        { return s.path }
func (s *Session) Kind() MediaKind     { return s.kind }

// Window returns the current window, or ErrNotReady before metadata loads.
func (s *Session) Window() (MediaWindow, error) {
	if s.state != StateReady {
		return MediaWindow{}, ErrNotReady
	}
	return s.window, nil
}

// Playable reports whether the window has anything to loop.
func (s *Session) Playable() bool {
	return s.state == StateReady && s.kind == MediaVideo && s.window.Width() > 0
}

func (s *Session) SetStart(start float64) (MediaWindow, error) {
	if s.state != StateReady {
		return MediaWindow{}, ErrNotReady
	}
	s.window = s.window.SetStart(start)
	return s.window, nil
}

func (s *Session) SetEnd(end float64) (MediaWindow, error) {
	if s.state != StateReady {
		return MediaWindow{}, ErrNotReady
	}
	s.window = s.window.SetEnd(end)
	return s.window, nil
}

// Restore applies a saved window, re-clamped against the loaded duration.
func (s *Session) Restore(start, end float64) (MediaWindow, error) {
	if s.state != StateReady {
		return MediaWindow{}, ErrNotReady
	}
	s.window = s.window.SetStart(start).SetEnd(end)
	return s.window, nil
}
