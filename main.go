package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/media"
	"vid2pdf/internal/memory"
	"vid2pdf/internal/metrics"
	"vid2pdf/internal/middleware"
	"vid2pdf/internal/pipeline"
	"vid2pdf/internal/scratch"
	"vid2pdf/internal/startup"
	"vid2pdf/internal/video"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := startup.Load(args, stderr)
	switch {
	case errors.Is(err, startup.ErrHelp):
		return exitOK
	case errors.Is(err, startup.ErrUsage):
		logging.Error("%v", err)
		fmt.Fprintln(stderr, "Run 'vid2pdf --help' for usage.")
		return exitUsage
	case err != nil:
		logging.Error("Configuration error: %v", err)
		return exitError
	}

	if cfg.ShowVersion {
		fmt.Fprintln(stdout, startup.GetBuildInfo())
		return exitOK
	}

	if cfg.LogLevel != "" {
		// already validated by Load
		level, _ := logging.ParseLevel(cfg.LogLevel)
		logging.SetLevel(level)
	}

	memory.ConfigureFromEnv()
	startup.LogConfig(cfg)

	if err := startup.PrepareOutput(cfg); err != nil {
		logging.Error("%v", err)
		return exitError
	}
	startup.LogDecoderInit(cfg)

	useVips := false
	if cfg.UseVips() {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips initialization failed: %v", err)
		} else {
			useVips = true
			defer media.ShutdownVips()
		}
	}
	startup.LogResizerInit(cfg.UseVips(), useVips)

	scratch.SetObserver(metrics.NewScratchObserver())
	metrics.InitializeMetrics()
	info := startup.GetBuildInfo()
	metrics.AppInfo.WithLabelValues(info.Version, info.Commit, info.GoVersion).Set(1)

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(pipeline.FFmpeg(video.NewDecoder(cfg.FFmpegPath, cfg.FFprobePath)), pipeline.Options{
		Diff:        cfg.Diff,
		Background:  cfg.Background,
		PageWidth:   cfg.PageWidth,
		PageHeight:  cfg.PageHeight,
		JPEGQuality: cfg.JPEGQuality,
		UseVips:     useVips,
		Workers:     cfg.StageWorkers(),
		Output:      cfg.Output,
		Preview:     cfg.Preview,
		ScratchDir:  cfg.ScratchDir,
		Creator:     startup.Creator(),
		Memory:      monitor,
	})

	if cfg.MetricsAddr != "" {
		router := metrics.NewRouter(p, startup.Version)
		handler := middleware.Logger(middleware.DefaultLoggingConfig())(middleware.Metrics()(router))
		srv, err := metrics.StartServer(cfg.MetricsAddr, handler)
		if err != nil {
			logging.Warn("Metrics server disabled: %v", err)
		} else {
			collector := metrics.NewCollector(p, 5*time.Second)
			collector.Start()
			defer func() {
				collector.Stop()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logging.Warn("Metrics server shutdown error: %v", err)
				}
			}()
		}
	}

	startup.LogRunStarted(cfg.Input)
	res, err := p.Run(ctx, cfg.Input)
	if err != nil {
		if ctx.Err() != nil {
			startup.LogShutdownInitiated("interrupted")
			startup.LogShutdownStepComplete("Decoder stopped and scratch storage removed")
		}
		logging.Error("Conversion failed (%s): %v", pipeline.Status(err), err)
		return exitError
	}

	startup.LogRunComplete(startup.RunSummary{
		Output:      res.Output,
		Preview:     res.Preview,
		Frames:      res.Frames,
		Keyframes:   res.Keyframes,
		RowsTrimmed: res.RowsTrimmed,
		Pages:       len(res.Pages),
		Strips:      res.Strips(),
		Duration:    res.Duration,
	})
	return exitOK
}
