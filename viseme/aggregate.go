package viseme

// Record is one labelled frame.
type Record struct {
	Timestamp float64            `json:"timestamp" yaml:"timestamp"`
	Visemes   map[string]float64 `json:"visemes" yaml:"visemes"`
	Dominant  string             `json:"dominant_viseme" yaml:"dominant_viseme"`
	Laugh     float64            `json:"laugh_score" yaml:"laugh_score"`
}

// Aggregator timestamps extractor outputs and accumulates records in
// frame order.
type Aggregator struct {
	frameSize  int
	sampleRate int
	records    []Record
}

func NewAggregator(frameSize, sampleRate int) *Aggregator {
	return &Aggregator{frameSize: frameSize, sampleRate: sampleRate}
}

// Add labels the next frame and returns its record.
func (a *Aggregator) Add(out Output) Record {
	idx := len(a.records)
	r := Record{
		Timestamp: float64(idx) * float64(a.frameSize) / float64(a.sampleRate),
		Visemes:   out.Weights.Map(),
		Dominant:  out.Weights.Dominant().String(),
		Laugh:     float64(out.Laugh),
	}
	a.records = append(a.records, r)
	return r
}

func (a *Aggregator) Len() int { return len(a.records) }

// Records returns the accumulated sequence. The slice must not be modified.
func (a *Aggregator) Records() []Record { return a.records }

// Aggregate labels a full sequence of outputs.
func Aggregate(outs []Output, frameSize, sampleRate int) []Record {
	a := NewAggregator(frameSize, sampleRate)
	for _, o := range outs {
		a.Add(o)
	}
	return a.Records()
}
