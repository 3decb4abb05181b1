package viseme

import (
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// library holds the lip-sync entry points resolved from the shared object.
type library struct {
	initialize     func(sampleRate, bufferSize int32) int32
	createContext  func(ctx *uintptr, provider int32) int32
	processFrame   func(ctx uintptr, audio *float32, n int32, visemes *float32, laugh *float32) int32
	destroyContext func(ctx uintptr) int32
	shutdown       func()
	close          func() error
}

// openLibrary resolves the shared object; replaced in tests.
var openLibrary = loadLibrary

// Native binds the lip-sync shared library.
type Native struct {
	path string
	log  logrus.FieldLogger

	lib        *library
	started    bool
	ctx        uintptr
	bufferSize int
	once       sync.Once
}

func NewNative(path string, log logrus.FieldLogger) *Native {
	return &Native{path: path, log: log}
}

func (n *Native) Initialize(sampleRate, bufferSize int) error {
	fail := func(err error) error {
		return &InitializationError{SampleRate: sampleRate, BufferSize: bufferSize, Err: err}
	}
	if n.path == "" {
		return fail(ErrNativeUnavailable)
	}
	if sampleRate <= 0 || bufferSize <= 0 || sampleRate > math.MaxInt32 || bufferSize > math.MaxInt32 {
		return fail(fmt.Errorf("sample rate and buffer size must be positive 32-bit values"))
	}
	lib, err := openLibrary(n.path)
	if err != nil {
		return fail(err)
	}
	n.lib = lib

	if rc := lib.initialize(int32(sampleRate), int32(bufferSize)); rc != 0 {
		return fail(fmt.Errorf("initialize returned code %d", rc))
	}
	n.started = true

	var ctx uintptr
	if rc := lib.createContext(&ctx, 0); rc != 0 {
		return fail(fmt.Errorf("create context returned code %d", rc))
	}
	n.ctx = ctx
	n.bufferSize = bufferSize
	return nil
}

func (n *Native) Process(frame []float32) Output {
	if n.ctx == 0 {
		n.log.Warn("native extractor used without a context")
		return Output{}
	}
	buf := make([]float32, n.bufferSize)
	if len(frame) != n.bufferSize {
		n.log.WithField("frame_len", len(frame)).Debug("resizing frame to buffer size")
	}
	copy(buf, frame)

	var (
		w     Weights
		laugh float32
	)
	if rc := n.lib.processFrame(n.ctx, &buf[0], int32(len(buf)), &w[0], &laugh); rc != 0 {
		n.log.WithError(&ExtractionFailure{Code: int(rc)}).Warn("substituting zero visemes")
		return Output{}
	}
	for i, v := range w {
		w[i] = finite(v)
	}
	return Output{Weights: w, Laugh: finite(laugh)}
}

// finite maps NaN and infinities to zero so exports stay encodable.
func finite(v float32) float32 {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return 0
	}
	return v
}

func (n *Native) Cleanup() {
	n.once.Do(func() {
		if n.lib == nil {
			return
		}
		if n.ctx != 0 {
			if rc := n.lib.destroyContext(n.ctx); rc != 0 {
				n.log.WithField("code", rc).Warn("destroy context failed")
			}
			n.ctx = 0
		}
		if n.started {
			n.lib.shutdown()
			n.started = false
		}
		if err := n.lib.close(); err != nil {
			n.log.WithError(err).Warn("close lip-sync library")
		}
	})
}

func (n *Native) Mode() Mode { return ModeNative }
