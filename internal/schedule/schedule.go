// Package schedule picks the delay attached to a scheduled send action.
package schedule

import "math/rand/v2"

// Delay bounds in seconds. The range reads as a human finishing typing and
// hitting send, not as an instant bot reply.
const (
	MinDelaySeconds = 45
	MaxDelaySeconds = 150
)

// PickDelaySeconds samples uniformly from [MinDelaySeconds, MaxDelaySeconds].
func PickDelaySeconds() int {
	return MinDelaySeconds + rand.IntN(MaxDelaySeconds-MinDelaySeconds+1)
}
