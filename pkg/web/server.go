// Package web serves the motion preview API and the live frame stream.
package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-motion/pkg/driver"
	"github.com/teslashibe/go-motion/pkg/hub"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/model"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/protocol"
)

// Server is the preview server
type Server struct {
	app  *fiber.App
	addr string

	driver *driver.Driver
	lib    *library.Registry
	def    *model.Definition
	log    *slog.Logger

	accessLog io.Writer

	// Hub for websocket frame broadcast
	frames *hub.Hub
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithDefinition sets the model layout used for offline sampling.
func WithDefinition(def *model.Definition) Option {
	return func(s *Server) { s.def = def }
}

// WithAccessLog sets where request lines are written. nil disables them.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.accessLog = w }
}

// NewServer creates a server on addr for d and lib and attaches its frame
// hub as d's sink.
func NewServer(addr string, d *driver.Driver, lib *library.Registry, opts ...Option) *Server {
	s := &Server{
		addr:      addr,
		driver:    d,
		lib:       lib,
		def:       model.DefaultDefinition(),
		log:       slog.Default(),
		accessLog: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.frames = hub.New("frames", hub.WithLogger(s.log), hub.WithHandler(s.handleCommand))
	d.SetSink(HubSink(s.frames))

	app := fiber.New(fiber.Config{
		AppName:               "go-motion",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	if s.accessLog != nil {
		app.Use(logger.New(logger.Config{Output: s.accessLog}))
	}

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/model", s.handleModel)
	api.Get("/motions", s.handleListMotions)
	api.Get("/motions/:name", s.handleMotionInfo)
	api.Get("/motions/:name/sample", s.handleSample)
	api.Post("/motions/:name/play", s.handlePlay)
	api.Get("/expressions", s.handleListExpressions)
	api.Post("/expressions/:name", s.handleExpression)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// HubSink publishes driver messages to every client of h.
func HubSink(h *hub.Hub) driver.Sink {
	return driver.SinkFunc(func(msg *protocol.Message) error {
		data, err := msg.Bytes()
		if err != nil {
			return err
		}
		h.Broadcast(hub.NewJSONMessage(data))
		return nil
	})
}

// App returns the fiber app, for tests.
func (s *Server) App() *fiber.App { return s.app }

// Hub returns the frame hub.
func (s *Server) Hub() *hub.Hub { return s.frames }

// Start listens on the server address until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.frames.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.log.Warn("web server shutdown", "error", err)
		}
	}()

	s.log.Info("web server listening", "addr", ln.Addr().String())
	err := s.app.Listener(ln)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleError maps library and driver errors onto HTTP status codes.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, library.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, driver.ErrBusy):
		code = fiber.StatusConflict
	case errors.Is(err, driver.ErrInvalidFPS), errors.Is(err, motion.ErrInvalidDocument):
		code = fiber.StatusBadRequest
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
