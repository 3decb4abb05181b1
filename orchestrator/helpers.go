package orchestrator

import (
	"sort"

	"github.com/maastricht-university/lipsync-pipeline/viseme"
)

const (
	laughThreshold = 0.1
	topN           = 5
)

func summarize(recs []viseme.Record, duration float64, mode viseme.Mode) Summary {
	s := Summary{FrameCount: len(recs), Duration: duration, Mode: string(mode), Unique: []string{}, Top: []VisemeCount{}}
	if len(recs) == 0 {
		return s
	}

	counts := map[string]int{}
	laughSum := 0.0
	for _, r := range recs {
		counts[r.Dominant]++
		if r.Laugh > laughThreshold {
			s.LaughFrames++
			laughSum += r.Laugh
		}
	}
	if s.LaughFrames > 0 {
		s.MeanLaugh = laughSum / float64(s.LaughFrames)
	}

	for name := range counts {
		s.Unique = append(s.Unique, name)
	}
	sort.Strings(s.Unique)

	for name, n := range counts {
		s.Top = append(s.Top, VisemeCount{Viseme: name, Count: n, Percent: float64(n) / float64(len(recs)) * 100})
	}
	// most frequent first, category order on ties
	sort.Slice(s.Top, func(i, j int) bool {
		if s.Top[i].Count != s.Top[j].Count {
			return s.Top[i].Count > s.Top[j].Count
		}
		ci, _ := viseme.Parse(s.Top[i].Viseme)
		cj, _ := viseme.Parse(s.Top[j].Viseme)
		return ci < cj
	})
	if len(s.Top) > topN {
		s.Top = s.Top[:topN]
	}
	return s
}
