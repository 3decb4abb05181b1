package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maastricht-university/lipsync-pipeline/clients"
	"github.com/maastricht-university/lipsync-pipeline/config"
)

// speech relays POST /speech to the synthesis service and streams the audio
// back as it arrives.
func (s *Server) speech(c *gin.Context) {
	text := strings.TrimSpace(c.PostForm("text"))
	voice := c.DefaultPostForm("voice", s.cfg.Services.TTS.Voice)

	ctx := c.Request.Context()
	if t := s.cfg.Services.TTS.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.DurSeconds(t))
		defer cancel()
	}

	body, ct, err := s.http.TTS(ctx, strings.TrimRight(s.cfg.Services.TTS.URL, "/"), text, voice)
	switch {
	case errors.Is(err, clients.ErrEmptyText):
		abort(c, http.StatusBadRequest, err)
		return
	case err != nil:
		_ = c.Error(err)
		abort(c, http.StatusBadGateway, err)
		return
	}
	defer body.Close()

	// unknown length, gin copies the body straight through
	c.DataFromReader(http.StatusOK, -1, ct, body, nil)
}
