package ocr

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	reURL   = regexp.MustCompile(`\b(www\.|https?://)[^\s]+|\b[a-z0-9\-]+\.(com|net|org|io|co|de|uk|in|ae)\b`)
)

func hasEmailPattern(s string) bool { return reEmail.MatchString(s) }
func hasPhonePattern(s string) bool { return rePhone.MatchString(s) }
func hasURLPattern(s string) bool   { return reURL.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// boost for the usual business-card artifacts
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasEmailPattern(txtL) {
		score += 0.25
	}
	if hasPhonePattern(txtL) {
		score += 0.25
	}
	if hasURLPattern(txtL) {
		score += 0.15
	}
	if len(strings.Fields(txt)) >= 6 {
		score += 0.15
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
