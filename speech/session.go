package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/lipsync-pipeline/config"
)

var ErrUnknownModel = errors.New("unknown transcription model")

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Factory loads the named model.
type Factory func(name string, m config.Model) (Transcriber, error)

// Session owns the currently loaded transcription model. Requests for a
// different model swap it in first; requests are served one at a time.
type Session struct {
	mu      sync.Mutex
	models  map[string]config.Model
	factory Factory
	log     logrus.FieldLogger

	active string
	model  Transcriber
}

func NewSession(models map[string]config.Model, factory Factory, log logrus.FieldLogger) *Session {
	return &Session{models: models, factory: factory, log: log}
}

// Active is the name of the loaded model, empty if none.
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Swap loads name and makes it the active model.
func (s *Session) Swap(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swapLocked(name)
}

func (s *Session) swapLocked(name string) error {
	m, ok := s.models[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	t, err := s.factory(name, m)
	if err != nil {
		return fmt.Errorf("load model %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"from": s.active, "to": name}).Info("transcription model loaded")
	s.active, s.model = name, t
	return nil
}

// Transcribe runs the named model over audio, loading it first if another
// model is active. The audio is staged in a temp file that is removed
// afterwards on a best-effort basis.
func (s *Session) Transcribe(ctx context.Context, name string, audio []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != s.active || s.model == nil {
		if err := s.swapLocked(name); err != nil {
			return "", err
		}
	}

	f, err := os.CreateTemp("", "transcribe-*.mp3")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).WithField("path", path).Debug("temp audio not removed")
		}
	}()
	if _, err := f.Write(audio); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.model.Transcribe(ctx, path)
}
