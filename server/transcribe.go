package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maastricht-university/lipsync-pipeline/speech"
)

var errNoSession = errors.New("transcription is not configured")

// transcribe handles POST /transcribe with form fields model_name and file
// (base64 audio).
func (s *Server) transcribe(c *gin.Context) {
	if s.session == nil {
		abort(c, http.StatusServiceUnavailable, errNoSession)
		return
	}
	name := c.PostForm("model_name")
	if name == "" {
		name = s.cfg.Speech.DefaultModel
	}
	audio, err := base64.StdEncoding.DecodeString(c.PostForm("file"))
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("file: %w", err))
		return
	}
	if len(audio) == 0 {
		abort(c, http.StatusBadRequest, errors.New("file: no audio"))
		return
	}

	text, err := s.session.Transcribe(c.Request.Context(), name, audio)
	switch {
	case errors.Is(err, speech.ErrUnknownModel):
		abort(c, http.StatusBadRequest, err)
		return
	case err != nil:
		_ = c.Error(err)
		abort(c, http.StatusBadGateway, err)
		return
	}
	s.reqLog(c).WithField("model", name).Info("transcribed")
	c.JSON(http.StatusOK, gin.H{"text": text})
}
