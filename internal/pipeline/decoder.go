package pipeline

import (
	"context"

	"vid2pdf/internal/video"
)

// FFmpeg adapts a video.Decoder to the Decoder interface.
func FFmpeg(d *video.Decoder) Decoder {
	return ffmpegDecoder{d: d}
}

type ffmpegDecoder struct {
	d *video.Decoder
}

func (f ffmpegDecoder) Probe(ctx context.Context, path string) (*video.Info, error) {
	return f.d.Probe(ctx, path)
}

func (f ffmpegDecoder) Open(ctx context.Context, path string, info *video.Info) (FrameSource, error) {
	s, err := f.d.Frames(ctx, path, info)
	if err != nil {
		return nil, err
	}
	return s, nil
}
