package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestExportOutputPath(t *testing.T) {
	got := exportOutputPath(filepath.Join("media", "beach day.mov"))
	want := filepath.Join("media", "beach day_card.mp4")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExportArgsVideoTrim(t *testing.T) {
	job := ExportJob{
		Input:  "clip.mp4",
		Output: "clip_card.mp4",
		Kind:   MediaVideo,
		Window: NewMediaWindow(30).SetStart(12.5),
		Card:   DefaultCard("ada").WithCaption("hello"),
	}
	args := exportArgs(job)

	ss := slices.Index(args, "-ss")
	if ss < 0 || args[ss+1] != "12.500" {
		t.Fatalf("expected -ss 12.500 in %v", args)
	}
	dur := slices.Index(args, "-t")
	if dur < 0 || args[dur+1] != "10.000" {
		t.Fatalf("expected -t 10.000 in %v", args)
	}
	if ss > slices.Index(args, "-i") {
		t.Fatal("expected input seeking before -i")
	}
	if args[len(args)-1] != "clip_card.mp4" {
		t.Fatalf("expected output last, got %v", args)
	}
	if slices.Contains(args, "-an") {
		t.Fatal("video export should keep audio")
	}
}

func TestExportArgsImageLoops(t *testing.T) {
	args := exportArgs(ExportJob{Input: "cat.png", Output: "out.mp4", Kind: MediaImage, Card: DefaultCard("")})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-loop 1 -t 5.000 -i cat.png") || !slices.Contains(args, "-an") {
		t.Fatalf("unexpected image args: %v", args)
	}
}

func TestCardFilter(t *testing.T) {
	card := DefaultCard("ada").WithStyle("polaroid").WithColor("#111111").WithCaption("it's 5:00, 50% off").ToggleRotate()
	filter := cardFilter(card)

	for _, want := range []string{
		"pad=iw+64:ih+160:32:32:color=0x111111",
		"rotate=a=",
		"fontcolor=white",
		`5\:00`,
		`50\\% off`,
		"@ada",
	} {
		if !strings.Contains(filter, want) {
			t.Fatalf("filter %q missing %q", filter, want)
		}
	}

	plain := cardFilter(DefaultCard(""))
	if strings.Contains(plain, "drawtext") || strings.Contains(plain, "rotate") {
		t.Fatalf("plain card should have no text or rotation: %q", plain)
	}
}

func TestIsDark(t *testing.T) {
	if isDark("ffffff") || !isDark("111111") || isDark("zz") {
		t.Fatal("unexpected brightness classification")
	}
}

func TestExportCardRejectsEmptyWindow(t *testing.T) {
	_, err := exportCard(context.Background(), "ffmpeg", ExportJob{Input: "clip.mp4", Kind: MediaVideo})
	if err == nil {
		t.Fatal("expected empty window error")
	}
}

// unquoteToken undoes one level of ffmpeg token escaping: quoted runs are
// copied verbatim and a backslash escapes the next byte.
func unquoteToken(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				b.WriteString(s[i+1:])
				return b.String()
			}
			b.WriteString(s[i+1 : i+1+end])
			i += end + 1
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// drawtextLiteral expands text the way drawtext does for strings without
// %{...} sequences.
func drawtextLiteral(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '%':
			return "", fmt.Errorf("stray %% at %d in %q", i, s)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

func TestEscapeDrawtextSurvivesFFmpegParsing(t *testing.T) {
	for _, caption := range []string{
		"50% off",
		"it's 5:00",
		`a\b`,
		"x,y",
		"100%: don't, ok",
		"plain",
	} {
		value := unquoteToken(unquoteToken("'" + escapeDrawtext(caption) + "'"))
		got, err := drawtextLiteral(value)
		if err != nil {
			t.Fatalf("caption %q: %v", caption, err)
		}
		if got != caption {
			t.Fatalf("caption %q rendered as %q", caption, got)
		}
	}
}
