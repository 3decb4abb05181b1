package viseme

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDominantTieBreak(t *testing.T) {
	cases := []struct {
		name string
		w    Weights
		want Category
	}{
		{"all zero", Weights{}, Sil},
		{"single max", func() Weights { var w Weights; w[AA] = 0.7; w[PP] = 0.3; return w }(), AA},
		{"tie picks lowest", func() Weights { var w Weights; w[O] = 0.5; w[FF] = 0.5; return w }(), FF},
		{"last index", func() Weights { var w Weights; w[U] = 1; return w }(), U},
	}
	for _, tc := range cases {
		if got := tc.w.Dominant(); got != tc.want {
			t.Errorf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestParseNames(t *testing.T) {
	for i, n := range Names() {
		c, ok := Parse(n)
		if !ok || int(c) != i {
			t.Errorf("Parse(%q) = %v, %v", n, c, ok)
		}
	}
	if _, ok := Parse("zz"); ok {
		t.Error("unexpected match")
	}
	if Category(99).String() != "unknown" {
		t.Error("out-of-range category should be unknown")
	}
}

func TestFallbackSilence(t *testing.T) {
	fb := NewFallback(quietLogger())
	if err := fb.Initialize(48000, 1024); err != nil {
		t.Fatal(err)
	}
	out := fb.Process(make([]float32, 1024))
	if out.Weights.Dominant() != Sil {
		t.Errorf("dominant = %s", out.Weights.Dominant())
	}
	if out.Laugh != 0 {
		t.Errorf("laugh = %v", out.Laugh)
	}
	if fb.Mode() != ModeFallback {
		t.Errorf("mode = %s", fb.Mode())
	}
}

func TestFallbackLoudFrame(t *testing.T) {
	fb := NewFallback(quietLogger())
	_ = fb.Initialize(48000, 4)
	out := fb.Process([]float32{0.3, -0.3, 0.3, -0.3})

	var sum float64
	for _, v := range out.Weights {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("weights sum to %v", sum)
	}
	if out.Weights.Dominant() != AA {
		t.Errorf("dominant = %s, want aa", out.Weights.Dominant())
	}
	if math.Abs(float64(out.Laugh)-0.6) > 1e-6 {
		t.Errorf("laugh = %v", out.Laugh)
	}
}

func TestFallbackMalformedInput(t *testing.T) {
	fb := NewFallback(quietLogger())
	if out := fb.Process([]float32{1}); out != (Output{}) {
		t.Errorf("uninitialized process should be zero, got %+v", out)
	}
	_ = fb.Initialize(16000, 8)
	nan := float32(math.NaN())
	out := fb.Process([]float32{nan, nan})
	if out.Weights.Dominant() != Sil {
		t.Errorf("NaN frame dominant = %s", out.Weights.Dominant())
	}
	if out := fb.Process(nil); out.Weights[Sil] != 1 {
		t.Errorf("empty frame weights = %v", out.Weights)
	}
}

func TestFallbackRejectsConfig(t *testing.T) {
	var ie *InitializationError
	if err := NewFallback(quietLogger()).Initialize(0, 1024); !errors.As(err, &ie) {
		t.Fatalf("got %v", err)
	}
}

func TestOpenFallsBackWithoutLibrary(t *testing.T) {
	ex, err := Open(Options{SampleRate: 48000, BufferSize: 1024}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer ex.Cleanup()
	if ex.Mode() != ModeFallback {
		t.Errorf("mode = %s", ex.Mode())
	}
}

func TestOpenRequireNative(t *testing.T) {
	_, err := Open(Options{Library: "/nonexistent/libOVRLipSync.so", RequireNative: true, SampleRate: 48000, BufferSize: 1024}, quietLogger())
	var ie *InitializationError
	if !errors.As(err, &ie) {
		t.Fatalf("want InitializationError, got %v", err)
	}
	if !errors.Is(err, ErrNativeUnavailable) {
		t.Errorf("want ErrNativeUnavailable in chain, got %v", err)
	}
}

func TestNativeCleanupIdempotent(t *testing.T) {
	n := NewNative("", quietLogger())
	if err := n.Initialize(48000, 1024); err == nil {
		t.Fatal("expected init error without a library path")
	}
	n.Cleanup()
	n.Cleanup()
	if out := n.Process(make([]float32, 1024)); out != (Output{}) {
		t.Errorf("process without context = %+v", out)
	}
}

func TestAggregateTimestamps(t *testing.T) {
	outs := make([]Output, 5)
	outs[2].Weights[E] = 1
	recs := Aggregate(outs, 1024, 48000)
	if len(recs) != 5 {
		t.Fatalf("len = %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Timestamp <= recs[i-1].Timestamp {
			t.Fatalf("timestamps not increasing at %d", i)
		}
	}
	if want := 3 * 1024.0 / 48000; recs[3].Timestamp != want {
		t.Errorf("ts[3] = %v want %v", recs[3].Timestamp, want)
	}
	if recs[2].Dominant != "E" || recs[0].Dominant != "sil" {
		t.Errorf("dominants = %s, %s", recs[2].Dominant, recs[0].Dominant)
	}
	if len(recs[0].Visemes) != Count {
		t.Errorf("visemes map has %d keys", len(recs[0].Visemes))
	}
}
