// Package media holds the raster stages of the pipeline.
//
// It provides:
//   - Luminance: conversion of decoded frames to single-channel images
//   - TrimBackground: removal of rows that are uniformly darker than a threshold
//   - Thumbnailer: aspect-preserving downscale into a square bounding box,
//     using imaging or, when enabled, libvips
//   - ContactSheet: a vertical stack of all strips for previewing a run
//
// Strips that end up with zero height or width are reported as
// ErrDegenerateStrip instead of being passed on.
package media
