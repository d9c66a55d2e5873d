package batch

import "os"

// isStale reports whether an output needs rendering: it does not exist,
// the input was modified after it was written, or the parameters it was
// rendered with no longer match.
func isStale(input Input, outputPath, wantFingerprint, recorded string) bool {
	info, err := os.Stat(outputPath)
	if err != nil {
		return true
	}
	if input.ModTime.After(info.ModTime()) {
		return true
	}
	return recorded != wantFingerprint
}
