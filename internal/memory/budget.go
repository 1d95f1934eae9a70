package memory

import "vid2pdf/internal/logging"

// framesInFlight is how many full-size frames the pipeline holds at once:
// the frame being compared and the last kept frame.
const framesInFlight = 2

// FrameBytes returns the size of one decoded RGBA frame.
func FrameBytes(width, height int) int64 {
	return int64(width) * int64(height) * 4
}

// CheckFrameBudget warns when the frames the sampler holds at once would use
// more than half of limit. It returns the estimated bytes. A limit of 0
// disables the warning.
func CheckFrameBudget(width, height int, limit int64) int64 {
	need := FrameBytes(width, height) * framesInFlight
	if limit > 0 && need > limit/2 {
		logging.Warn("A %dx%d video needs about %s for frames alone, more than half of the %s memory limit",
			width, height, FormatBytes(need), FormatBytes(limit))
	}
	return need
}
