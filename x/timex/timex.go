package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// TickDeltaMS converts a previous/current millisecond pair into the
// elapsed-time argument fed to an engine pass. Negative deltas (clock
// steps) collapse to 0 and a runaway gap is pinned to maxStep so a
// stalled scheduler cannot fast-forward timers.
func TickDeltaMS(prevMs, nowMs int64, maxStep int32) int32 {
	d := nowMs - prevMs
	if d < 0 {
		return 0
	}
	if maxStep > 0 && d > int64(maxStep) {
		return maxStep
	}
	return int32(d)
}
