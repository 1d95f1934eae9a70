package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"vid2pdf/internal/logging"

	"github.com/tidwall/gjson"
)

// SampleFPS is the rate at which frames are taken from the source.
const SampleFPS = 1

// ErrInputUnreadable reports that the source could not be opened or decoded.
var ErrInputUnreadable = errors.New("input unreadable")

// Info describes the first video stream of a source file. Width and Height
// are the display size: for a stream rotated by 90 or 270 degrees they are
// the coded size swapped, matching the frames ffmpeg produces.
type Info struct {
	Width    int
	Height   int
	Duration float64
	Codec    string
	Rotation int // display rotation reported by ffprobe, normalised to 0-359
}

// Decoder runs ffprobe and ffmpeg.
type Decoder struct {
	ffmpegPath  string
	ffprobePath string
}

// NewDecoder creates a Decoder. Empty paths fall back to "ffmpeg" and
// "ffprobe" on PATH.
func NewDecoder(ffmpegPath, ffprobePath string) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Decoder{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Probe reads stream information for path.
func (d *Decoder) Probe(ctx context.Context, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-print_format", "json",
		"-show_entries", "stream=codec_name,width,height:stream_tags=rotate:stream_side_data=rotation:format=duration",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffprobe %s: %w - %s", ErrInputUnreadable, path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	info, err := parseProbe(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}

	logging.Debug("Probed %s: %dx%d %s, %.1fs, rotated %d", path, info.Width, info.Height, info.Codec, info.Duration, info.Rotation)
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("ffprobe returned invalid JSON")
	}

	res := gjson.ParseBytes(data)
	stream := res.Get("streams.0")
	if !stream.Exists() {
		return nil, errors.New("no video stream")
	}

	info := &Info{
		Width:  int(stream.Get("width").Int()),
		Height: int(stream.Get("height").Int()),
		Codec:  stream.Get("codec_name").String(),
	}
	// ffprobe reports duration as a string
	if dur := res.Get("format.duration"); dur.Exists() {
		if v, err := strconv.ParseFloat(dur.String(), 64); err == nil {
			info.Duration = v
		}
	}

	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid video dimensions %dx%d", info.Width, info.Height)
	}

	info.Rotation = rotation(stream)
	if info.Rotation == 90 || info.Rotation == 270 {
		info.Width, info.Height = info.Height, info.Width
	}
	return info, nil
}

// rotation returns the display rotation of stream normalised to [0, 360).
// The display matrix side data wins over the legacy rotate tag.
func rotation(stream gjson.Result) int {
	var deg int64
	found := false
	stream.Get("side_data_list").ForEach(func(_, sd gjson.Result) bool {
		if r := sd.Get("rotation"); r.Exists() {
			deg, found = r.Int(), true
			return false
		}
		return true
	})
	if !found {
		// older ffprobe: string tag such as "90"
		deg = stream.Get("tags.rotate").Int()
	}
	return int((deg%360 + 360) % 360)
}

// Frames starts decoding path at SampleFPS. info must come from Probe on
// the same file. Output is scaled to exactly info.Width x info.Height so the
// frame stride always matches what ffmpeg writes. The caller must Close the
// returned stream.
func (d *Decoder) Frames(ctx context.Context, path string, info *Info) (*Stream, error) {
	if info == nil || info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: unknown frame size", ErrInputUnreadable, path)
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-an",
		"-vf", fmt.Sprintf("fps=%d,scale=%d:%d", SampleFPS, info.Width, info.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	s := &Stream{cmd: cmd, r: stdout, path: path, width: info.Width, height: info.Height}
	cmd.Stderr = &s.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %w", ErrInputUnreadable, err)
	}

	logging.Debug("Started ffmpeg (pid %d) for %s", cmd.Process.Pid, path)
	return s, nil
}

// Stream yields decoded frames from a running ffmpeg process.
type Stream struct {
	cmd    *exec.Cmd
	r      io.Reader
	stderr bytes.Buffer
	path   string

	width, height int
	frames        int
	err           error

	waitOnce sync.Once
	waitErr  error
}

// Next returns the next frame, or io.EOF when ffmpeg has finished cleanly.
// Once Next has returned an error it returns the same error on every call.
func (s *Stream) Next() (*image.NRGBA, error) {
	if s.err != nil {
		return nil, s.err
	}

	img, err := readFrame(s.r, s.width, s.height)
	if err == nil {
		s.frames++
		return img, nil
	}

	switch werr := s.wait(); {
	case werr != nil:
		s.err = fmt.Errorf("%w: ffmpeg %s after %d frames: %w - %s",
			ErrInputUnreadable, s.path, s.frames, werr, bytes.TrimSpace(s.stderr.Bytes()))
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.err = fmt.Errorf("%w: truncated frame %d in %s", ErrInputUnreadable, s.frames, s.path)
	default:
		s.err = err
	}
	return nil, s.err
}

// Close stops ffmpeg if it is still running and releases the process.
func (s *Stream) Close() error {
	if s.cmd.ProcessState == nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

func (s *Stream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

// readFrame reads one width x height RGBA frame from r. It returns io.EOF
// when r is exhausted at a frame boundary and io.ErrUnexpectedEOF when a
// frame is cut short.
func readFrame(r io.Reader, width, height int) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if _, err := io.ReadFull(r, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}
