package memory

import (
	"math"
	"runtime/debug"
	"strconv"

	"vid2pdf/internal/logging"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultMemoryRatio is the percentage of container memory to use for Go heap
	// Reserve the rest for ffmpeg, libvips and goroutine stacks.
	DefaultMemoryRatio = 0.85
)

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	// Configured indicates whether GOMEMLIMIT was set
	Configured bool

	// Source indicates where the configuration came from
	Source string // "GOMEMLIMIT", "MEMORY_LIMIT", or "none"

	// ContainerLimit is the container memory limit in bytes (0 if not set)
	ContainerLimit int64

	// GoMemLimit is the configured GOMEMLIMIT in bytes (0 if not set)
	GoMemLimit int64

	// Ratio is the memory ratio used (0 if not applicable)
	Ratio float64
}

type envSettings struct {
	GoMemLimit  string  `env:"GOMEMLIMIT"`
	MemoryLimit int64   `env:"MEMORY_LIMIT"`
	MemoryRatio float64 `env:"MEMORY_RATIO" envDefault:"0.85"`
}

// ConfigureFromEnv sets GOMEMLIMIT from a container memory limit.
// Call this early in main() before frames are decoded.
//
// Environment variables:
//   - GOMEMLIMIT: If set, this takes precedence (standard Go env var)
//   - MEMORY_LIMIT: Container memory limit in bytes
//   - MEMORY_RATIO: Optional ratio of memory to use for Go heap (default: 0.85)
func ConfigureFromEnv() ConfigResult {
	result := ConfigResult{Source: "none"}

	var settings envSettings
	if err := env.Parse(&settings); err != nil {
		// fields that parsed are still set
		logging.Warn("Invalid memory settings in environment: %v", err)
	}

	if settings.GoMemLimit != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = "GOMEMLIMIT"
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", settings.GoMemLimit)
		return result
	}

	if settings.MemoryLimit <= 0 {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return result
	}

	result.ContainerLimit = settings.MemoryLimit

	ratio := settings.MemoryRatio
	if ratio <= 0 || ratio > 1.0 {
		logging.Warn("MEMORY_RATIO %v out of range (0.0-1.0), using default %.2f", ratio, DefaultMemoryRatio)
		ratio = DefaultMemoryRatio
	}
	result.Ratio = ratio

	goMemLimit := int64(float64(settings.MemoryLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = "MEMORY_LIMIT"
	result.GoMemLimit = goMemLimit

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		FormatBytes(goMemLimit),
		ratio*100,
		FormatBytes(settings.MemoryLimit),
	)

	return result
}

// FormatBytes formats bytes into human-readable string
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
