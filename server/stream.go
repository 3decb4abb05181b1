package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/lipsync-pipeline/audio"
	"github.com/maastricht-university/lipsync-pipeline/viseme"
)

const (
	writeWait = 10 * time.Second
	// maxMessageBytes caps a single inbound websocket message.
	maxMessageBytes = 1 << 20
)

type streamMessage struct {
	Type       string         `json:"type"` // ready, frame, done, error
	Mode       viseme.Mode    `json:"mode,omitempty"`
	Frame      *viseme.Record `json:"frame,omitempty"`
	FrameCount int            `json:"frame_count,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// streamVisemes handles GET /ws/visemes. Clients send binary 16-bit PCM and
// receive one frame message per completed frame. A text "end" message or
// closing the socket flushes the trailing partial frame.
func (s *Server) streamVisemes(c *gin.Context) {
	rate, err := intParam(c.Query("sample_rate"), s.cfg.Audio.SampleRate, maxSampleRate)
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("sample_rate: %w", err))
		return
	}
	size, err := intParam(c.Query("frame_size"), s.cfg.Audio.FrameSize, audio.MaxFrameSize)
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("frame_size: %w", err))
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.reqLog(c).WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	ctx := c.Request.Context()
	log := s.reqLog(c).WithFields(logrus.Fields{"sample_rate": rate, "frame_size": size})
	p := s.pipeline(log)
	defer p.Finalize(ctx)

	send := func(m streamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(m)
	}

	if err := p.Initialize(ctx, rate, size); err != nil {
		log.WithError(err).Warn("stream extractor unavailable")
		_ = send(streamMessage{Type: "error", Error: err.Error()})
		return
	}
	if err := send(streamMessage{Type: "ready", Mode: p.Mode()}); err != nil {
		return
	}

	emit := func(frame []float32) error {
		rec, err := p.Feed(ctx, frame)
		if err != nil {
			return err
		}
		return send(streamMessage{Type: "frame", Frame: &rec})
	}
	fb := newFrameBuffer(size)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("stream read")
			}
			// peer is gone; labelling the tail still completes the run
			_ = fb.Flush(func(frame []float32) error {
				_, err := p.Feed(ctx, frame)
				return err
			})
			log.WithField("frames", len(p.Records())).Info("stream closed")
			return
		}

		switch mt {
		case websocket.BinaryMessage:
			if err := fb.Write(data, emit); err != nil {
				log.WithError(err).Warn("stream write")
				return
			}
		case websocket.TextMessage:
			if strings.TrimSpace(string(data)) != "end" {
				continue
			}
			if err := fb.Flush(emit); err != nil {
				log.WithError(err).Warn("stream flush")
				return
			}
			n := len(p.Records())
			_ = send(streamMessage{Type: "done", FrameCount: n})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			log.WithField("frames", n).Info("stream finished")
			return
		}
	}
}
