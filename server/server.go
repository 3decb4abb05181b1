package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/lipsync-pipeline/clients"
	"github.com/maastricht-university/lipsync-pipeline/config"
	"github.com/maastricht-university/lipsync-pipeline/orchestrator"
	"github.com/maastricht-university/lipsync-pipeline/speech"
)

const shutdownGrace = 5 * time.Second

type Deps struct {
	Config  *config.Root
	Log     logrus.FieldLogger
	Session *speech.Session
	HTTP    *clients.HTTP
	// Open overrides extractor construction, nil means viseme.Open.
	Open orchestrator.OpenFunc
}

type Server struct {
	cfg      *config.Root
	log      logrus.FieldLogger
	session  *speech.Session
	http     *clients.HTTP
	open     orchestrator.OpenFunc
	upgrader websocket.Upgrader
	router   *gin.Engine
}

func New(d Deps) *Server {
	s := &Server{
		cfg:     d.Config,
		log:     d.Log,
		session: d.Session,
		http:    d.HTTP,
		open:    d.Open,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	if s.http == nil {
		s.http = clients.NewHTTP()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log))
	r.GET("/health", s.health)
	r.POST("/transcribe", s.transcribe)
	r.POST("/speech", s.speech)
	r.POST("/visemes", s.visemes)
	r.POST("/phonemes", s.phonemes)
	r.GET("/ws/visemes", s.streamVisemes)
	s.router = r
	return s
}

func (s *Server) Router() *gin.Engine { return s.router }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router.Handler(),
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		s.log.WithError(err).Error("shutdown")
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model": s.activeModel()})
}

func (s *Server) activeModel() string {
	if s.session == nil {
		return ""
	}
	return s.session.Active()
}

// pipeline builds a single-use pipeline for one request or stream.
func (s *Server) pipeline(log logrus.FieldLogger) *orchestrator.Pipeline {
	var opts []orchestrator.Option
	if s.open != nil {
		opts = append(opts, orchestrator.WithExtractor(s.open))
	}
	return orchestrator.NewPipeline(s.cfg, log, opts...)
}

func abort(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
