// Package main provides the CLI entry point for framepipe.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framepipe/pkg/adapters/ffmpegpipe"
	"github.com/user/framepipe/pkg/adapters/imagewriter"
	"github.com/user/framepipe/pkg/adapters/logger"
	"github.com/user/framepipe/pkg/adapters/mp4probe"
	"github.com/user/framepipe/pkg/adapters/osfilesystem"
	"github.com/user/framepipe/pkg/adapters/pattern"
	"github.com/user/framepipe/pkg/adapters/screencast"
	"github.com/user/framepipe/pkg/config"
	"github.com/user/framepipe/pkg/ports"
	"github.com/user/framepipe/pkg/recording"
	"github.com/user/framepipe/pkg/savequeue"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "framepipe",
		Usage:   l10n.T("Record real-time frame streams to video or image sequences"),
		Version: version,
		Commands: []*cli.Command{
			recordCommand(),
			stillCommand(),
			probeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func recordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: l10n.T("Record a frame stream to an MP4 video or a PNG sequence"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output video file path")},
			&cli.StringFlag{Name: "source", Usage: l10n.T("Frame source: pattern or url")},
			&cli.StringFlag{Name: "url", Usage: l10n.T("Page URL for the url source")},
			&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to the Chrome executable")},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width in pixels")},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height in pixels")},
			&cli.Float64Flag{Name: "fps", Usage: l10n.T("Output frame rate")},
			&cli.Float64Flag{Name: "start", Usage: l10n.T("Recording start time in seconds")},
			&cli.Float64Flag{Name: "duration", Aliases: []string{"d"}, Usage: l10n.T("Recording duration in seconds")},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Record a fixed number of frames instead of a duration")},
			&cli.BoolFlag{Name: "sequence", Usage: l10n.T("Save a numbered PNG sequence instead of piping to ffmpeg")},
			&cli.StringFlag{Name: "sequence-prefix", Usage: l10n.T("Filename prefix for sequence frames")},
			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to the ffmpeg binary")},
			&cli.StringSliceFlag{Name: "input-arg", Usage: l10n.T("Extra ffmpeg input argument (repeatable)")},
			&cli.StringSliceFlag{Name: "output-arg", Usage: l10n.T("Extra ffmpeg output argument (repeatable)")},
			&cli.StringFlag{Name: "max-queue-memory", Usage: l10n.T("Memory ceiling for queued image saves (e.g. 500MB, 0 for synchronous)")},
			&cli.IntFlag{Name: "workers", Usage: l10n.T("Image save worker count")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		},
		Action: runRecord,
	}
}

func runRecord(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	log := buildLogger(c, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Interrupted, flushing...")
		cancel()
	}()

	source, err := buildSource(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Sequence {
		return recordSequence(ctx, cfg, source, log)
	}
	return recordVideo(ctx, cfg, source, log)
}

// recordVideo pipes frames to an ffmpeg subprocess as raw RGB24.
func recordVideo(ctx context.Context, cfg config.Config, source ports.FrameSource, log ports.Logger) error {
	if cfg.Output == "" {
		return fmt.Errorf("output path is required")
	}

	pipe := ffmpegpipe.New()
	if cfg.FFmpegPath == "" && !pipe.Available() {
		return fmt.Errorf("ffmpeg not found: install it or pass --ffmpeg-path")
	}

	rec := recording.New(pipe, osfilesystem.New(), log)
	settings := ports.EncoderSettings{
		BinaryPath: cfg.FFmpegPath,
		TargetPath: cfg.Output,
		TargetArgs: cfg.OutputArgs,
		SourceArgs: cfg.InputArgs,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Channels:   3,
		FPS:        cfg.FPS,
		Quiet:      cfg.FFmpegQuiet,
	}

	end := cfg.StartSec + cfg.DurationSec
	if cfg.Frames > 0 {
		end = cfg.StartSec + float64(cfg.Frames)/cfg.FPS
	}
	if err := rec.OpenPipe(settings, cfg.StartSec, end); err != nil {
		return err
	}

	frames, err := source.Start(ctx)
	if err != nil {
		rec.Close()
		return err
	}

	session := rec.Session()
	lastReport := time.Now()
	for frame := range frames {
		if !session.IsActive() {
			break
		}
		rec.AddFrame(frame)
		session.Advance()

		if time.Since(lastReport) >= time.Second {
			log.Info("Recording %3.0f%% (%d frames, %d queued)",
				session.Progress()*100, session.Count(), rec.QueueDepth())
			lastReport = time.Now()
		}
	}
	source.Stop()

	captured := session.Count()
	if err := rec.Close(); err != nil {
		return err
	}
	log.Info("Captured %d frames", captured)
	return nil
}

// recordSequence saves each frame as a numbered PNG through the
// bounded-memory save queue.
func recordSequence(ctx context.Context, cfg config.Config, source ports.FrameSource, log ports.Logger) error {
	maxBytes, err := cfg.MaxQueueBytes()
	if err != nil {
		return err
	}
	queue := savequeue.New(imagewriter.New(), log, savequeue.Options{
		MaxQueuedBytes: maxBytes,
		Workers:        cfg.Workers,
	})

	session := recording.NewSession()
	if cfg.Frames > 0 {
		err = session.StartFrames(0, cfg.Frames, cfg.FPS)
	} else {
		err = session.StartSeconds(cfg.StartSec, cfg.StartSec+cfg.DurationSec, cfg.FPS)
	}
	if err != nil {
		return err
	}

	frames, err := source.Start(ctx)
	if err != nil {
		return err
	}

	prefix := cfg.SequencePrefix
	if prefix == "" && cfg.Output != "" {
		prefix = strings.TrimSuffix(cfg.Output, filepath.Ext(cfg.Output)) + "_"
	}

	for frame := range frames {
		if !session.IsActive() {
			break
		}
		queue.Submit(savequeue.Job{
			Path:   recording.SequenceFileName(prefix, session.OutputFrame()),
			Width:  frame.Width,
			Height: frame.Height,
			Pixels: frame.Pixels,
		})
		session.Advance()
	}
	source.Stop()

	// Frames already captured must reach disk before exit.
	queue.Close()
	log.Info("Captured %d frames", session.Count())
	return nil
}

func stillCommand() *cli.Command {
	return &cli.Command{
		Name:  "still",
		Usage: l10n.T("Capture a single frame to a PNG or Radiance HDR file"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output image path (.png or .hdr)")},
			&cli.StringFlag{Name: "source", Value: "pattern", Usage: l10n.T("Frame source: pattern or url")},
			&cli.StringFlag{Name: "url", Usage: l10n.T("Page URL for the url source")},
			&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to the Chrome executable")},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: 1280, Usage: l10n.T("Frame width in pixels")},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: 720, Usage: l10n.T("Frame height in pixels")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
		},
		Action: runStill,
	}
}

func runStill(c *cli.Context) error {
	cfg := config.Defaults()
	cfg.Source = c.String("source")
	cfg.URL = c.String("url")
	cfg.ChromePath = c.String("chrome-path")
	cfg.Width = c.Int("width")
	cfg.Height = c.Int("height")

	log := logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
	source, err := buildSource(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	frames, err := source.Start(ctx)
	if err != nil {
		return err
	}
	frame, ok := <-frames
	source.Stop()
	if !ok {
		return fmt.Errorf("no frame captured")
	}

	path, err := recording.ResolvePath(osfilesystem.New(), c.String("output"))
	if err != nil {
		return err
	}

	writer := imagewriter.New()
	// HDR saves run synchronously on the calling goroutine; they are rare
	// and already expensive.
	if strings.EqualFold(filepath.Ext(path), ".hdr") {
		err = writer.WriteHDR(path, frame.Width, frame.Height, toFloatRGBA(frame))
	} else {
		err = writer.WritePNG(path, frame.Width, frame.Height, frame.Pixels)
	}
	if err != nil {
		return err
	}
	log.Info("Screenshot saved to %s", path)
	return nil
}

// toFloatRGBA expands an 8-bit frame to the float RGBA layout the HDR
// writer expects.
func toFloatRGBA(f ports.Frame) []float32 {
	out := make([]float32, f.Width*f.Height*4)
	step := f.Channels
	for p, i := 0, 0; i+step <= len(f.Pixels); p, i = p+4, i+step {
		out[p] = float32(f.Pixels[i]) / 255
		out[p+1] = float32(f.Pixels[i+1]) / 255
		out[p+2] = float32(f.Pixels[i+2]) / 255
		if step == 4 {
			out[p+3] = float32(f.Pixels[i+3]) / 255
		} else {
			out[p+3] = 1
		}
	}
	return out
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Inspect a recorded MP4 file"),
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			info, err := mp4probe.ProbeFile(c.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("fragmented: %v\n", info.Fragmented)
			fmt.Printf("duration:   %d ms\n", info.DurationMs)
			for _, track := range info.Tracks {
				fmt.Printf("track %d: handler=%s codec=%s %dx%d %d ms\n",
					track.ID, track.Handler, track.Codec, track.Width, track.Height, track.DurationMs)
			}
			return nil
		},
	}
}

// buildConfig merges the optional YAML file with CLI flag overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("url") {
		cfg.URL = c.String("url")
	}
	if c.IsSet("chrome-path") {
		cfg.ChromePath = c.String("chrome-path")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}
	if c.IsSet("start") {
		cfg.StartSec = c.Float64("start")
	}
	if c.IsSet("duration") {
		cfg.DurationSec = c.Float64("duration")
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("sequence") {
		cfg.Sequence = c.Bool("sequence")
	}
	if c.IsSet("sequence-prefix") {
		cfg.SequencePrefix = c.String("sequence-prefix")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("input-arg") {
		cfg.InputArgs = c.StringSlice("input-arg")
	}
	if c.IsSet("output-arg") {
		cfg.OutputArgs = c.StringSlice("output-arg")
	}
	if c.IsSet("max-queue-memory") {
		cfg.MaxQueueMemory = c.String("max-queue-memory")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if cfg.FPS <= 0 {
		return cfg, fmt.Errorf("fps must be positive")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("width and height must be positive")
	}
	return cfg, nil
}

func buildLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

func buildSource(cfg config.Config, log ports.Logger) (ports.FrameSource, error) {
	switch cfg.Source {
	case "", "pattern":
		return pattern.New(cfg.Width, cfg.Height, cfg.FPS), nil
	case "url":
		if cfg.URL == "" {
			return nil, fmt.Errorf("url source requires --url")
		}
		return screencast.New(screencast.Options{
			URL:        cfg.URL,
			Width:      cfg.Width,
			Height:     cfg.Height,
			Quality:    cfg.ScreencastQuality,
			ChromePath: cfg.ChromePath,
			Logger:     log,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}
