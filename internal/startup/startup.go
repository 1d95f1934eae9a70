package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/media"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String formats the build information for --version.
func (b BuildInfo) String() string {
	return fmt.Sprintf("vid2pdf %s (commit %s, built %s, %s %s/%s)",
		b.Version, b.Commit, b.BuildTime, b.GoVersion, b.OS, b.Arch)
}

// Creator is the producer name written into document metadata.
func Creator() string {
	return "vid2pdf " + Version
}

// LogConfig prints the banner and the settings the run will use.
func LogConfig(cfg *Config) {
	printBanner()
	logSystemInfo()

	section("CONFIGURATION")
	logging.Info("  Input:         %s", cfg.Input)
	logging.Info("  Output:        %s", cfg.Output)
	if cfg.Preview != "" {
		logging.Info("  Preview:       %s", cfg.Preview)
	}
	logging.Info("  Diff:          %d%%", cfg.Diff)
	logging.Info("  Background:    %d", cfg.Background)
	logging.Info("  Page size:     %dx%d pt", cfg.PageWidth, cfg.PageHeight)
	logging.Info("  JPEG quality:  %d", cfg.JPEGQuality)
	logging.Info("  Resizer:       %s", cfg.Resizer)
	logging.Info("  Workers:       %d", cfg.StageWorkers())
	logging.Info("  Scratch root:  %s", scratchRootString(cfg.ScratchDir))
	logging.Info("  Metrics:       %s", enabledString(cfg.MetricsAddr != ""))
	logging.Info("  LOG_LEVEL:     %s", logging.GetLevel())

	if !media.IsVideoFile(cfg.Input) {
		logging.Warn("  %s does not have a known video extension, trying anyway", filepath.Base(cfg.Input))
	}
}

// PrepareOutput makes sure the directories for output files exist and can
// be written to.
func PrepareOutput(cfg *Config) error {
	section("OUTPUT SETUP")

	for _, target := range []struct{ name, path string }{
		{"output", cfg.Output},
		{"preview", cfg.Preview},
	} {
		if target.path == "" {
			continue
		}
		dir := filepath.Dir(target.path)
		if err := ensureDirectory(dir, target.name); err != nil {
			return fmt.Errorf("%s directory error: %w", target.name, err)
		}
		if err := testWriteAccess(dir); err != nil {
			return fmt.Errorf("%s directory is not writable: %w", target.name, err)
		}
		logging.Info("  [OK] %s directory is writable: %s", target.name, dir)
	}

	if cfg.ScratchDir != "" {
		if err := ensureDirectory(cfg.ScratchDir, "scratch"); err != nil {
			return fmt.Errorf("scratch directory error: %w", err)
		}
	}
	return nil
}

// LogDecoderInit checks that ffmpeg and ffprobe can be run.
func LogDecoderInit(cfg *Config) {
	section("DECODER INITIALIZATION")

	for _, tool := range []string{cfg.FFmpegPath, cfg.FFprobePath} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", tool, err)
			logging.Warn("  Decoding will fail until %s is installed or its path is set", filepath.Base(tool))
			continue
		}
		logging.Info("  [OK] %s is available", filepath.Base(tool))
	}
}

// LogResizerInit reports which thumbnail backend is in use.
func LogResizerInit(requestedVips, vipsAvailable bool) {
	switch {
	case requestedVips && vipsAvailable:
		logging.Info("  [OK] libvips resizer initialized")
	case requestedVips:
		logging.Warn("  libvips unavailable, falling back to imaging")
	default:
		logging.Info("  [OK] imaging resizer")
	}
}

// RunSummary is what LogRunComplete reports.
type RunSummary struct {
	Output      string
	Preview     string
	Frames      int
	Keyframes   int
	RowsTrimmed int
	Pages       int
	Strips      int
	Duration    time.Duration
}

// LogRunStarted marks the start of the conversion.
func LogRunStarted(input string) {
	section("CONVERSION")
	logging.Info("  Converting %s", input)
}

// LogRunComplete logs the run summary.
func LogRunComplete(s RunSummary) {
	section("DONE")
	logging.Info("  Frames sampled:  %d", s.Frames)
	logging.Info("  Keyframes kept:  %d", s.Keyframes)
	logging.Info("  Rows trimmed:    %d", s.RowsTrimmed)
	logging.Info("  Strips placed:   %d", s.Strips)
	logging.Info("  Pages written:   %d", s.Pages)
	logging.Info("  Output:          %s", s.Output)
	if s.Preview != "" {
		logging.Info("  Preview:         %s", s.Preview)
	}
	logging.Info("  Elapsed:         %v", s.Duration.Round(time.Millisecond))
}

// LogShutdownInitiated logs an interrupted run.
func LogShutdownInitiated(reason string) {
	section(fmt.Sprintf("SHUTDOWN INITIATED (%s)", reason))
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// Helper functions

func section(title string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("%s", title)
	logging.Info("------------------------------------------------------------")
}

func printBanner() {
	banner := `
------------------------------------------------------------
        _     _ ____            _  __
 __   _(_) __| |___ \ _ __   __| |/ _|
 \ \ / / |/ _' | __) | '_ \ / _' | |_
  \ V /| | (_| |/ __/| |_) | (_| |  _|
   \_/ |_|\__,_|_____| .__/ \__,_|_|
                     |_|
------------------------------------------------------------`
	fmt.Fprintln(os.Stderr, banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func scratchRootString(dir string) string {
	if dir == "" {
		return os.TempDir() + " (default)"
	}
	return dir
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	return nil
}

func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	logging.Debug("  %s path: %s", filepath.Base(name), path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", filepath.Base(name), err)
	}

	if first, _, _ := strings.Cut(string(output), "\n"); first != "" {
		logging.Debug("  %s", strings.TrimSpace(first))
	}
	return nil
}
