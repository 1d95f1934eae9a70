// Package video decodes source recordings with the ffmpeg command line tools.
//
// Probe runs ffprobe to read the dimensions, codec, and duration of the first
// video stream. Frames starts ffmpeg with a 1 fps sampling filter and raw
// RGBA output on stdout, and exposes the result as a Stream of *image.NRGBA
// frames. Each frame is read in full before it is returned.
//
// Any probe or decode failure is reported as ErrInputUnreadable.
package video
