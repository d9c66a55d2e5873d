package effect

import "fmt"

// Thresholds split subject brightness into three half-open bands:
// below Low is shadow, Low up to High is midtone, High and above is
// highlight.
type Thresholds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Validate rejects thresholds outside 0-255 and pairs where the shadow band
// would swallow the midtone band. Degenerate pairs are refused here so they
// never reach the posterizer.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.Low > 255 {
		return fmt.Errorf("low threshold %d out of range 0-255", t.Low)
	}
	if t.High < 0 || t.High > 255 {
		return fmt.Errorf("high threshold %d out of range 0-255", t.High)
	}
	if t.Low >= t.High {
		return fmt.Errorf("low threshold %d must be below high threshold %d", t.Low, t.High)
	}
	return nil
}
