package phoneme

// Timing places one phoneme on the clip timeline.
type Timing struct {
	Phoneme string  `json:"phoneme"`
	Viseme  string  `json:"viseme"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Distribute spreads symbols evenly over duration seconds.
func Distribute(symbols []string, duration float64) []Timing {
	out := make([]Timing, 0, len(symbols))
	if len(symbols) == 0 || duration <= 0 {
		return out
	}
	step := duration / float64(len(symbols))
	for i, s := range symbols {
		out = append(out, Timing{
			Phoneme: s,
			Viseme:  VisemeFor(s).String(),
			Start:   float64(i) * step,
			End:     float64(i+1) * step,
		})
	}
	// pin the last boundary to the clip end
	out[len(out)-1].End = duration
	return out
}
