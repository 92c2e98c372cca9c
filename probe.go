package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// MediaKind distinguishes stills from clips.
type MediaKind int

const (
	MediaUnknown MediaKind = iota
	MediaImage
	MediaVideo
)

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
	videoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".m4v", ".webm"}
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// MediaKindOf classifies path by its extension.
func MediaKindOf(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(imageExtensions, ext):
		return MediaImage
	case slices.Contains(videoExtensions, ext):
		return MediaVideo
	default:
		return MediaUnknown
	}
}

// ProbeResult is the subset of ffprobe output the editor needs.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

type ProbeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type ProbeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// probeMedia runs ffprobe against path and decodes its JSON report.
func probeMedia(ctx context.Context, binary, path string) (ProbeResult, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("failed to probe media: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return result, nil
}

// DurationSeconds returns the container duration, falling back to the
// longest stream. It returns 0 when nothing usable is reported.
func (r ProbeResult) DurationSeconds() float64 {
	if d := parseSeconds(r.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, s := range r.Streams {
		longest = math.Max(longest, parseSeconds(s.Duration))
	}
	return longest
}

// VideoStream returns the first video stream, if any.
func (r ProbeResult) VideoStream() (ProbeStream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return s, true
		}
	}
	return ProbeStream{}, false
}

func parseSeconds(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed < 0 {
		return 0
	}
	return parsed
}
