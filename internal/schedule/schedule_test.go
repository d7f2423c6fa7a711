package schedule

import "testing"

func TestPickDelaySeconds_Bounds(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 5000; i++ {
		d := PickDelaySeconds()
		if d < MinDelaySeconds || d > MaxDelaySeconds {
			t.Fatalf("delay %d outside [%d, %d]", d, MinDelaySeconds, MaxDelaySeconds)
		}
		seen[d] = true
	}
	// Uniform sampling over a ~100-value range should hit both bounds and
	// plenty in between across 5000 draws.
	if !seen[MinDelaySeconds] || !seen[MaxDelaySeconds] {
		t.Errorf("bounds never sampled: min=%v max=%v", seen[MinDelaySeconds], seen[MaxDelaySeconds])
	}
	if len(seen) < 50 {
		t.Errorf("only %d distinct delays in 5000 draws", len(seen))
	}
}
