package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

type testCLI struct {
	dir    string
	config string
}

func newTestCLI(t *testing.T, extra string) testCLI {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	keyring.MockInit()
	t.Setenv("USER", "tester")
	t.Setenv("TCARD_LOG_LEVEL", "")

	config := filepath.Join(dir, "config.toml")
	content := `
[log]
path = "` + filepath.ToSlash(filepath.Join(dir, "state", "tcard.log")) + `"

[history]
enabled = true
path = "` + filepath.ToSlash(filepath.Join(dir, "state", "history.db")) + `"
` + extra
	if err := os.WriteFile(config, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return testCLI{dir: dir, config: config}
}

func (c testCLI) touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (c testCLI) run(args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", c.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func flagsSet(names ...string) func(string) bool {
	return func(name string) bool { return slices.Contains(names, name) }
}

func TestEditRequiresTerminal(t *testing.T) {
	cli := newTestCLI(t, "")
	media := cli.touch(t, "clip.mp4")

	for _, args := range [][]string{{"edit", media}, {media}} {
		_, err := cli.run(args...)
		if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
			t.Fatalf("%v: expected terminal error, got %v", args, err)
		}
	}
}

func TestProbeCommandImage(t *testing.T) {
	cli := newTestCLI(t, "")
	photo := cli.touch(t, "photo.png")

	out, err := cli.run("probe", photo)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	for _, want := range []string{"photo.png", "image", "Needs trim", "00:00.0 - 00:00.0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCommandRejectsMissingFile(t *testing.T) {
	cli := newTestCLI(t, "")
	for _, args := range [][]string{{"probe", "nothing.mp4"}, {"export", "nothing.mp4"}} {
		if _, err := cli.run(args...); err == nil || !strings.Contains(err.Error(), "does not exist") {
			t.Fatalf("%v: expected missing file error, got %v", args, err)
		}
	}

	notes := cli.touch(t, "notes.txt")
	if _, err := cli.run("probe", notes); err == nil || !strings.Contains(err.Error(), "not a supported") {
		t.Fatalf("expected unsupported file error, got %v", err)
	}
}

func TestRecentCommandEmpty(t *testing.T) {
	cli := newTestCLI(t, "")
	out, err := cli.run("recent")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if !strings.Contains(out, "No cards yet.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestBuildExportJobWithoutSidecar(t *testing.T) {
	media := filepath.Join(t.TempDir(), "clip.mp4")
	base := DefaultCard("ada").WithCaption("from config")

	job, err := buildExportJob(base, media, NewMediaWindow(40), exportOptions{output: "out.mp4"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if job.Card != base.Normalize() {
		t.Fatalf("expected configured card, got %+v", job.Card)
	}
	if job.Window.Start != 0 || job.Window.End != 10 {
		t.Fatalf("expected default window, got [%v, %v)", job.Window.Start, job.Window.End)
	}
	if job.Output != "out.mp4" || job.Kind != MediaVideo || job.Input != media {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestBuildExportJobFlagsOverrideSidecar(t *testing.T) {
	media := filepath.Join(t.TempDir(), "clip.mp4")
	saved := DefaultCard("bob").WithCaption("saved").WithStyle("film")
	if _, err := SaveProject(media, saved, NewMediaWindow(40).SetStart(12).SetEnd(18)); err != nil {
		t.Fatalf("save: %v", err)
	}

	job, err := buildExportJob(DefaultCard("ada"), media, NewMediaWindow(40), exportOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if job.Card.Username != "bob" || job.Card.Caption != "saved" {
		t.Fatalf("expected sidecar card, got %+v", job.Card)
	}
	if job.Window.Start != 12 || job.Window.End != 18 {
		t.Fatalf("expected sidecar window, got [%v, %v)", job.Window.Start, job.Window.End)
	}

	job, err = buildExportJob(DefaultCard("ada"), media, NewMediaWindow(40), exportOptions{
		caption: "flag",
		color:   "#C0392B",
		end:     40,
		changed: flagsSet("caption", "color", "end"),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if job.Card.Caption != "flag" || job.Card.Username != "bob" || job.Card.Style != "film" || job.Card.Color != "#c0392b" {
		t.Fatalf("expected flags over sidecar, got %+v", job.Card)
	}
	if job.Window.Start != 12 || job.Window.End != 22 {
		t.Fatalf("expected end clamped to 22, got [%v, %v)", job.Window.Start, job.Window.End)
	}

	job, err = buildExportJob(DefaultCard("ada"), media, NewMediaWindow(40), exportOptions{
		start:   35,
		end:     38,
		changed: flagsSet("start", "end"),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if job.Window.Start != 35 || job.Window.End != 38 {
		t.Fatalf("expected [35, 38), got [%v, %v)", job.Window.Start, job.Window.End)
	}
	if job.Window.Width() > MaxWindowSeconds {
		t.Fatalf("window wider than %v: %+v", MaxWindowSeconds, job.Window)
	}
}

func TestExportCommandRunsFFmpeg(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	bin := t.TempDir()
	ffprobe := writeScript(t, bin, "ffprobe", `cat <<'EOF'
{"streams":[{"index":0,"codec_type":"video","duration":"40.0"}],"format":{"duration":"40.0"}}
EOF
`)
	argsFile := filepath.Join(bin, "ffmpeg.args")
	ffmpeg := writeScript(t, bin, "ffmpeg", `printf '%s\n' "$@" > '`+argsFile+`'
for last; do :; done
: > "$last"
`)
	cli := newTestCLI(t, `
[ffmpeg]
ffmpeg = "`+ffmpeg+`"
ffprobe = "`+ffprobe+`"
`)
	media := cli.touch(t, "clip.mp4")
	output := filepath.Join(cli.dir, "card.mp4")

	out, err := cli.run("export", media, "--caption", "50% off", "--start", "35", "--end", "99", "-o", output)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Saved output to "+output) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if i := slices.Index(args, "-ss"); i < 0 || args[i+1] != "35.000" {
		t.Fatalf("expected -ss 35.000 in %v", args)
	}
	if i := slices.Index(args, "-t"); i < 0 || args[i+1] != "5.000" {
		t.Fatalf("expected -t 5.000 in %v", args)
	}

	out, err = cli.run("recent")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	for _, want := range []string{"clip.mp4", "50% off", "@tester", "00:35.0 - 00:40.0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in recent:\n%s", want, out)
		}
	}
}
