package startup

import (
	"errors"
	"fmt"
	"io"
	"os"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/media"
	"vid2pdf/internal/workers"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// ErrUsage marks errors caused by bad flags, arguments or settings.
var ErrUsage = errors.New("usage error")

// ErrHelp is returned by Load when -h or --help was given.
var ErrHelp = pflag.ErrHelp

// maxStageWorkers caps --workers=0.
const maxStageWorkers = 8

// Resizer names accepted by --resizer.
const (
	ResizerImaging = "imaging"
	ResizerVips    = "vips"
)

// Config holds all settings for one conversion. Environment variables supply
// defaults and command line flags override them.
type Config struct {
	Input string

	Diff       int    `env:"VID2PDF_DIFF" envDefault:"50"`
	Background int    `env:"VID2PDF_BACKGROUND" envDefault:"100"`
	Output     string `env:"VID2PDF_OUTPUT" envDefault:"result.pdf"`
	Preview    string `env:"VID2PDF_PREVIEW"`
	ScratchDir string `env:"VID2PDF_SCRATCH_DIR"`

	PageWidth   int    `env:"VID2PDF_PAGE_WIDTH" envDefault:"595"`
	PageHeight  int    `env:"VID2PDF_PAGE_HEIGHT" envDefault:"842"`
	JPEGQuality int    `env:"VID2PDF_JPEG_QUALITY" envDefault:"75"`
	Resizer     string `env:"VID2PDF_RESIZER" envDefault:"imaging"`
	Workers     int    `env:"VID2PDF_WORKERS" envDefault:"1"`

	MetricsAddr string `env:"VID2PDF_METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL"`

	FFmpegPath  string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	ShowVersion bool
}

// Load builds a Config from the environment and args (without the program
// name). Usage text goes to usage. It returns ErrHelp when help was
// requested and an error wrapping ErrUsage for any invalid input.
func Load(args []string, usage io.Writer) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrUsage, err)
	}

	fs := pflag.NewFlagSet("vid2pdf", pflag.ContinueOnError)
	fs.SetOutput(usage)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(usage, "Usage: vid2pdf [flags] <input>\n\n")
		fmt.Fprintf(usage, "Turns a screen recording of a scrolling document into a PDF.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.IntVarP(&cfg.Diff, "diff", "d", cfg.Diff, "percentage of samples that must change to keep a frame (0-100)")
	fs.IntVarP(&cfg.Background, "background", "b", cfg.Background, "rows with every pixel darker than this are trimmed (0-255)")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output PDF path")
	fs.StringVar(&cfg.Preview, "preview", cfg.Preview, "also write all strips stacked into one image at this path")
	fs.StringVar(&cfg.ScratchDir, "scratch-dir", cfg.ScratchDir, "parent directory for temporary strip files (default OS temp dir)")
	fs.IntVar(&cfg.PageWidth, "page-width", cfg.PageWidth, "page width in points")
	fs.IntVar(&cfg.PageHeight, "page-height", cfg.PageHeight, "page height in points")
	fs.IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "JPEG quality of embedded strips (1-100)")
	fs.StringVar(&cfg.Resizer, "resizer", cfg.Resizer, "thumbnail backend: imaging or vips")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent strip encoders; 0 means one per CPU")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address during the run")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	switch fs.NArg() {
	case 1:
		cfg.Input = fs.Arg(0)
	case 0:
		return nil, fmt.Errorf("%w: missing input video", ErrUsage)
	default:
		return nil, fmt.Errorf("%w: expected one input video, got %d arguments", ErrUsage, fs.NArg())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Every error wraps ErrUsage.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Diff >= 0 && c.Diff <= 100, "--diff must be between 0 and 100, got %d", c.Diff)
	check(c.Background >= 0 && c.Background <= 255, "--background must be between 0 and 255, got %d", c.Background)
	check(c.Output != "", "--output must not be empty")
	check(c.Preview == "" || media.IsPreviewFile(c.Preview), "--preview must end in an image extension such as .png, got %q", c.Preview)
	check(c.PageWidth > 0, "--page-width must be positive, got %d", c.PageWidth)
	check(c.PageHeight > 0, "--page-height must be positive, got %d", c.PageHeight)
	check(c.JPEGQuality >= 1 && c.JPEGQuality <= 100, "--jpeg-quality must be between 1 and 100, got %d", c.JPEGQuality)
	check(c.Workers >= 0, "--workers must not be negative, got %d", c.Workers)
	check(c.Resizer == ResizerImaging || c.Resizer == ResizerVips, "--resizer must be %q or %q, got %q", ResizerImaging, ResizerVips, c.Resizer)
	if c.LogLevel != "" {
		_, err := logging.ParseLevel(c.LogLevel)
		check(err == nil, "--log-level: %v", err)
	}
	if c.Input != "" {
		info, err := os.Stat(c.Input)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("input: %w", err))
		case info.IsDir():
			errs = append(errs, fmt.Errorf("input %s is a directory", c.Input))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUsage, errors.Join(errs...))
}

// StageWorkers resolves --workers: zero becomes one per CPU, capped.
func (c *Config) StageWorkers() int {
	if c.Workers == 0 {
		return workers.ForCPU(maxStageWorkers)
	}
	return c.Workers
}

// UseVips reports whether libvips was selected for thumbnailing.
func (c *Config) UseVips() bool {
	return c.Resizer == ResizerVips
}
