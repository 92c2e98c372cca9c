package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type editorDeps struct {
	logger    *slog.Logger
	history   *History
	width     int
	playerCtx context.Context
}

type cliContext struct {
	configPath string
	cfg        Config
	logger     *slog.Logger
	logCloser  io.Closer
}

func (c *cliContext) load() error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	cfg.Card = cfg.Card.WithUsername(defaultUsername(cfg.Card.Username))
	logger, closer, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	c.logCloser = closer
	return nil
}

func (c *cliContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

func (c *cliContext) openHistory(ctx context.Context) *History {
	if !c.cfg.History.Enabled {
		return nil
	}
	history, err := OpenHistory(ctx, c.cfg.History.Path)
	if err != nil {
		c.logger.Warn("history unavailable", "error", err)
		return nil
	}
	return history
}

func newRootCommand() *cobra.Command {
	ctx := &cliContext{}

	root := &cobra.Command{
		Use:           "tcard [file]",
		Short:         "Frame a photo or short clip as a captioned card",
		Version:       VERSION,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runEditor(cmd.Context(), ctx, cmd.OutOrStdout(), args[0])
		},
	}
	root.PersistentFlags().StringVar(&ctx.configPath, "config", "", "Path to config.toml")
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(
		newEditCommand(ctx),
		newProbeCommand(ctx),
		newExportCommand(ctx),
		newRecentCommand(ctx),
	)
	return root
}

func newEditCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file>",
		Short: "Open the card editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(cmd.Context(), ctx, cmd.OutOrStdout(), args[0])
		},
	}
}

func newProbeCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Show media duration and the default playback window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile := args[0]
			if err := validateInput(inputFile); err != nil {
				return err
			}
			w, err := loadWindow(cmd.Context(), ctx.cfg, inputFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProbe(inputFile, w))
			return nil
		},
	}
}

// exportOptions carries the export flags. changed reports whether the user
// set a flag explicitly.
type exportOptions struct {
	caption  string
	username string
	style    string
	color    string
	rotate   bool
	start    float64
	end      float64
	output   string
	changed  func(name string) bool
}

// buildExportJob layers the saved sidecar and then explicit flags over the
// configured card and the probed window.
func buildExportJob(base Card, inputFile string, w MediaWindow, opts exportOptions) (ExportJob, error) {
	card := base
	project, ok, err := LoadProject(inputFile)
	if err != nil {
		return ExportJob{}, err
	}
	if ok {
		card = project.Card
		w = w.SetStart(project.Start).SetEnd(project.End)
	}

	changed := opts.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if changed("caption") {
		card = card.WithCaption(opts.caption)
	}
	if changed("username") {
		card = card.WithUsername(opts.username)
	}
	if changed("style") {
		card = card.WithStyle(opts.style)
	}
	if changed("color") {
		card = card.WithColor(opts.color)
	}
	if changed("rotate") {
		card.Rotate = opts.rotate
	}
	if changed("start") {
		w = w.SetStart(opts.start)
	}
	if changed("end") {
		w = w.SetEnd(opts.end)
	}

	return ExportJob{
		Input:  inputFile,
		Output: opts.output,
		Kind:   MediaKindOf(inputFile),
		Window: w,
		Card:   card.Normalize(),
	}, nil
}

func newExportCommand(ctx *cliContext) *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a card without opening the editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile := args[0]
			if err := validateInput(inputFile); err != nil {
				return err
			}
			w, err := loadWindow(cmd.Context(), ctx.cfg, inputFile)
			if err != nil {
				return err
			}
			opts.changed = cmd.Flags().Changed
			job, err := buildExportJob(ctx.cfg.Card, inputFile, w, opts)
			if err != nil {
				return err
			}

			ctx.logger.Info("exporting card", "file", inputFile, "start", job.Window.Start, "end", job.Window.End, "style", job.Card.Style)
			outputFile, err := exportCard(cmd.Context(), ctx.cfg.FFmpeg.FFmpeg, job)
			if err != nil {
				return err
			}
			if history := ctx.openHistory(cmd.Context()); history != nil {
				defer history.Close()
				if _, err := history.Record(cmd.Context(), inputFile, job.Card, job.Window); err != nil {
					ctx.logger.Warn("history not updated", "error", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), BulletStyle.Render("└")+SuccessStyle.Render("Saved output to "+outputFile))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.caption, "caption", "", "Caption text")
	flags.StringVar(&opts.username, "username", "", "Username shown on the card")
	flags.StringVar(&opts.style, "style", "", "Frame style ("+strings.Join(FrameStyles, ", ")+")")
	flags.StringVar(&opts.color, "color", "", "Frame color as #rrggbb")
	flags.BoolVar(&opts.rotate, "rotate", false, "Slowly rock the card")
	flags.Float64Var(&opts.start, "start", 0, "Window start in seconds")
	flags.Float64Var(&opts.end, "end", 0, "Window end in seconds")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default <name>_card.mp4)")
	return cmd
}

func newRecentCommand(ctx *cliContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently edited cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history := ctx.openHistory(cmd.Context())
			if history == nil {
				return errors.New("history is disabled or unavailable")
			}
			defer history.Close()

			entries, err := history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), BulletStyle.Render("└")+TextStyle.Render("No cards yet."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecent(entries))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of cards to list")
	return cmd
}

func validateInput(inputFile string) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("file '%s' does not exist", inputFile)
	}
	if MediaKindOf(inputFile) == MediaUnknown {
		return fmt.Errorf("file '%s' is not a supported image or video", inputFile)
	}
	return nil
}

// loadWindow probes inputFile and returns its initial window. Images get an
// empty window.
func loadWindow(ctx context.Context, cfg Config, inputFile string) (MediaWindow, error) {
	if MediaKindOf(inputFile) != MediaVideo {
		return NewMediaWindow(0), nil
	}
	result, err := probeMedia(ctx, cfg.FFmpeg.FFprobe, inputFile)
	if err != nil {
		return MediaWindow{}, err
	}
	return NewMediaWindow(result.DurationSeconds()), nil
}

// interactiveFd returns the terminal descriptor behind out, if there is one.
func interactiveFd(out io.Writer) (uintptr, bool) {
	f, ok := out.(*os.File)
	if !ok {
		return 0, false
	}
	fd := f.Fd()
	return fd, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func runEditor(ctx context.Context, cli *cliContext, out io.Writer, inputFile string) error {
	fd, ok := interactiveFd(out)
	if !ok {
		return errors.New("the editor needs an interactive terminal; use 'tcard export' instead")
	}
	if err := validateInput(inputFile); err != nil {
		return err
	}
	for _, dependency := range []string{cli.cfg.FFmpeg.FFprobe, cli.cfg.FFmpeg.FFmpeg} {
		if !checkDependency(dependency) {
			return fmt.Errorf("%s is required but was not found in PATH", dependency)
		}
	}

	fmt.Fprintln(out, BulletStyle.Render("┌")+TitleStyle.Render("tcard"))

	width, _, err := term.GetSize(int(fd))
	if err != nil {
		width = 0
	}

	history := cli.openHistory(ctx)
	if history != nil {
		defer history.Close()
	}

	// mpv may still be starting when the editor quits; cancelling playerCtx
	// kills it.
	playerCtx, cancelPlayer := context.WithCancel(ctx)
	defer cancelPlayer()

	cli.logger.Info("opening editor", "file", inputFile)
	initialModel := newModel(cli.cfg, editorDeps{
		logger:    cli.logger,
		history:   history,
		width:     width,
		playerCtx: playerCtx,
	}, inputFile)

	p := tea.NewProgram(initialModel, tea.WithContext(ctx), tea.WithOutput(out))
	final, err := p.Run()
	if m, ok := final.(model); ok {
		m.shutdown()
	}
	cancelPlayer()
	if err != nil {
		return fmt.Errorf("error running editor: %w", err)
	}
	return nil
}
