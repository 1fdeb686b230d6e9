// Package inspect serves box tree summaries of ISO base media files over HTTP.
package inspect

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/ugparu/isobmff/format/bmff"
	"github.com/ugparu/isobmff/format/bmff/bmffio"
	"github.com/ugparu/isobmff/utils/buffer"
	"github.com/ugparu/isobmff/utils/logger"
)

// Node is one box of the tree returned by POST /inspect/tree.
type Node struct {
	Type       string  `json:"type"`
	UserType   string  `json:"user_type,omitempty"`
	Offset     int64   `json:"offset"`
	Size       uint64  `json:"size"`
	HeaderSize int     `json:"header_size"`
	Trailing   int     `json:"trailing,omitempty"`
	Children   []*Node `json:"children,omitempty"`
}

func newNode(b bmffio.Box) *Node {
	hdr := b.Header()
	n := &Node{
		Type:       hdr.Type.String(),
		Offset:     hdr.Offset,
		Size:       hdr.Size,
		HeaderSize: hdr.HeaderSize,
		Trailing:   hdr.Trailing,
	}
	if hdr.Type == bmffio.UUID {
		n.UserType = hdr.UserType.String()
	}
	for _, child := range b.Children() {
		n.Children = append(n.Children, newNode(child))
	}
	return n
}

type Server struct {
	cfg       Config
	opts      []bmffio.Option
	metrics   *metrics
	server    *http.Server
	router    *gin.Engine
	startOnce *sync.Once
	closeOnce *sync.Once
	deadChan  chan any
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Pprof {
		pprof.Register(router)
	}

	s := &Server{
		cfg:     cfg,
		metrics: newMetrics(),
		server: &http.Server{
			Addr:              cfg.Listen,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router:    router,
		startOnce: &sync.Once{},
		closeOnce: &sync.Once{},
		deadChan:  make(chan any),
	}
	if cfg.MaxDepth > 0 {
		s.opts = append(s.opts, bmffio.WithMaxDepth(cfg.MaxDepth))
	}

	router.POST("/inspect", s.inspect)
	router.POST("/inspect/tree", s.tree)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(s.metrics.handler()))

	logger.Debug(s, "Initialized and set up")
	return s
}

func (s *Server) String() string {
	return "INSPECT " + s.cfg.Listen
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Close is called. Only the first call listens.
func (s *Server) Start() {
	err := errors.New("HTTP server has been started already")
	s.startOnce.Do(func() {
		defer close(s.deadChan)

		logger.Info(s, "Starting listening")
		if err = s.server.ListenAndServe(); err != nil {
			logger.Warning(s, err.Error())
			err = nil
		}
	})
	if err != nil {
		logger.Error(s, err.Error())
	}
}

func (s *Server) Close() {
	s.closeOnce.Do(func() {
		logger.Warning(s, "Stopping and closing")
		s.server.Close()
	})
}

func (s *Server) Dead() <-chan any {
	return s.deadChan
}

// load decodes the request body, answering the request itself on failure.
func (s *Server) load(c *gin.Context) (*bmffio.File, bool) {
	start := time.Now()
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	f, err := bmff.Load(body, s.cfg.MaxBodyBytes, s.opts...)
	if err == nil {
		s.metrics.observe(resultOK, time.Since(start), bmff.CountBoxes(f))
		return f, true
	}

	var (
		tooLarge *http.MaxBytesError
		parseErr *bmffio.ParseError
	)
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, buffer.ErrTooLarge):
		s.metrics.observe(resultTooLarge, 0, 0)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body exceeds max_body_bytes"})
	case errors.As(err, &parseErr):
		s.metrics.observe(resultInvalid, 0, 0)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "path": parseErr.Path()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
	logger.Debugf(s, "Rejected %s: %v", c.Request.URL.Path, err)
	return nil, false
}

func (s *Server) inspect(c *gin.Context) {
	f, ok := s.load(c)
	if !ok {
		return
	}
	movie, err := bmff.Describe(f)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (s *Server) tree(c *gin.Context) {
	f, ok := s.load(c)
	if !ok {
		return
	}
	nodes := make([]*Node, 0, len(f.Children()))
	for _, b := range f.Children() {
		nodes = append(nodes, newNode(b))
	}
	c.JSON(http.StatusOK, nodes)
}
