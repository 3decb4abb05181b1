package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/lipsync-pipeline/audio"
	"github.com/maastricht-university/lipsync-pipeline/phoneme"
)

const headerMode = "X-Viseme-Mode"

// maxSampleRate bounds client-supplied stream rates.
const maxSampleRate = 384000

var errOutOfRange = errors.New("out of range")

// visemes handles POST /visemes: a multipart wav upload is run through its
// own pipeline and the export document returned.
func (s *Server) visemes(c *gin.Context) {
	frameSize, err := intParam(c.PostForm("frame_size"), s.cfg.Audio.FrameSize, audio.MaxFrameSize)
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("frame_size: %w", err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("file: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	w, err := audio.Decode(f)
	if err != nil {
		var (
			ufe *audio.UnsupportedFormatError
			swe *audio.UnsupportedSampleWidthError
		)
		if errors.As(err, &ufe) || errors.As(err, &swe) {
			abort(c, http.StatusUnsupportedMediaType, err)
			return
		}
		abort(c, http.StatusBadRequest, err)
		return
	}

	log := s.reqLog(c).WithField("file", fh.Filename)
	doc, sum, err := s.pipeline(log).Analyze(c.Request.Context(), w, frameSize)
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	log.WithFields(logrus.Fields{"frames": sum.FrameCount, "mode": sum.Mode}).Info("visemes extracted")
	c.Header(headerMode, string(sum.Mode))
	c.JSON(http.StatusOK, doc)
}

type phonemeRequest struct {
	Text     string  `json:"text"`
	Phonemes string  `json:"phonemes"`
	Duration float64 `json:"duration" binding:"gt=0"`
}

// phonemes handles POST /phonemes. Explicit phonemes win over text.
func (s *Server) phonemes(c *gin.Context) {
	var req phonemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var symbols []string
	switch {
	case req.Phonemes != "":
		symbols = phoneme.Parse(req.Phonemes)
	case req.Text != "":
		symbols = phoneme.FromText(req.Text)
	default:
		abort(c, http.StatusBadRequest, errors.New("text or phonemes required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"duration": req.Duration,
		"timings":  phoneme.Distribute(symbols, req.Duration),
	})
}

// intParam parses an optional integer in [1, limit].
func intParam(raw string, def, limit int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > limit {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", errOutOfRange, n, limit)
	}
	return n, nil
}
