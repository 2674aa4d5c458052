package task

import "time"

// Score computes the urgency score and band of t at now.
func Score(t Task, now time.Time) (float64, Band) {
	crit := ClampCriticality(t.Criticality)
	secs := secondsUntil(t.Deadline, now)
	hours := float64(secs) / 3600

	score := float64(crit * 4)
	switch {
	case secs <= 0:
		score += float64(1000 + crit*10)
	case hours < 24:
		score += float64(60 + crit*2)
	case hours < 72:
		score += float64(30 + crit)
	case hours < 168:
		score += 10
	}

	band := BandLow
	if score > 100 {
		band = BandHigh
	} else if score > 50 {
		band = BandMedium
	}

	// Hobbies are halved after the urgency bonus.
	if t.Category == CategoryHobby {
		return score / 2, BandHobby
	}
	return score, band
}
