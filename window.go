package main

import "math"

// MaxWindowSeconds is the widest playback window a card may loop.
const MaxWindowSeconds = 10.0

// minWindowSeconds is the narrowest window setEnd will produce.
const minWindowSeconds = 1.0

// MediaWindow is the [Start, End) range of a clip selected for looping.
type MediaWindow struct {
	Start    float64
	End      float64
	Duration float64
	MaxWidth float64
}

// NewMediaWindow builds the initial window once the media duration is known.
func NewMediaWindow(duration float64) MediaWindow {
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return MediaWindow{
		Start:    0,
		End:      math.Min(MaxWindowSeconds, duration),
		Duration: duration,
		MaxWidth: MaxWindowSeconds,
	}
}

// NeedsTrim reports whether the media is longer than a single window.
func (w MediaWindow) NeedsTrim() bool {
	return w.Duration > w.MaxWidth
}

// Width returns End - Start.
func (w MediaWindow) Width() float64 {
	return w.End - w.Start
}

// SetStart moves the in point and re-derives the out point so the window
// stays inside the media and no wider than MaxWidth.
func (w MediaWindow) SetStart(start float64) MediaWindow {
	w.Start = clamp(start, 0, math.Max(0, w.Duration-minWindowSeconds))
	if w.Start+w.MaxWidth > w.Duration {
		w.End = w.Duration
	} else {
		w.End = w.Start + w.MaxWidth
	}
	return w
}

// SetEnd moves the out point within [Start+1, min(Duration, Start+MaxWidth)].
func (w MediaWindow) SetEnd(end float64) MediaWindow {
	hi := math.Min(w.Duration, w.Start+w.MaxWidth)
	lo := math.Min(w.Start+minWindowSeconds, hi)
	w.End = clamp(end, lo, hi)
	return w
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
