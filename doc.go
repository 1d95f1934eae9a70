// Command vid2pdf turns a screen recording of a scrolling or paginated
// document into a compact PDF.
//
// It samples the video at one frame per second, keeps only frames that
// differ materially from the last kept one, trims dark background rows from
// each, scales them to the page width and stacks them onto A4 pages.
//
// Usage:
//
//	vid2pdf [flags] <input>
//
// Common flags:
//
//	-d, --diff int          percentage of samples that must change to keep a frame (default 50)
//	-b, --background int    rows with every pixel darker than this are trimmed (default 100)
//	-o, --output string     output PDF path (default "result.pdf")
//	    --preview string    also write all strips stacked into one image
//
// Run with --help for the full list. Exit status is 0 on success, 1 when the
// conversion fails and 2 for invalid arguments.
package main
