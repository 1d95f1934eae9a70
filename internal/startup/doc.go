// Package startup loads configuration and handles startup and run logging.
//
// # Configuration
//
// [Load] reads defaults from environment variables and then applies command
// line flags on top:
//
//   - VID2PDF_DIFF / -d, --diff: percentage of differing samples needed to keep a frame (default: 50)
//   - VID2PDF_BACKGROUND / -b, --background: background luminance threshold (default: 100)
//   - VID2PDF_OUTPUT / -o, --output: PDF path (default: result.pdf)
//   - VID2PDF_PREVIEW / --preview: optional contact sheet image path
//   - VID2PDF_SCRATCH_DIR / --scratch-dir: parent of the temporary strip directory
//   - VID2PDF_PAGE_WIDTH, VID2PDF_PAGE_HEIGHT / --page-width, --page-height: page size in points (default: 595x842)
//   - VID2PDF_JPEG_QUALITY / --jpeg-quality: quality of embedded strips (default: 75)
//   - VID2PDF_RESIZER / --resizer: imaging or vips (default: imaging)
//   - VID2PDF_WORKERS / --workers: concurrent strip encoders, 0 for one per CPU (default: 1)
//   - VID2PDF_METRICS_ADDR / --metrics-addr: serve /metrics while running
//   - LOG_LEVEL / --log-level: debug, info, warn, error (default: info)
//   - FFMPEG_PATH, FFPROBE_PATH: decoder binaries (default: looked up in PATH)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see the memory package
//
// Invalid values are reported together, wrapped in [ErrUsage].
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
package startup
