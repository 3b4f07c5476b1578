package web

import (
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-motion/pkg/driver"
	"github.com/teslashibe/go-motion/pkg/hub"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/protocol"
)

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	protocol.StateData
	Clients     int    `json:"clients"`
	Dropped     uint64 `json:"dropped"`
	Motions     int    `json:"motions"`
	Expressions int    `json:"expressions"`
}

// PlayRequest is the optional body of POST /api/motions/:name/play
type PlayRequest struct {
	Priority int `json:"priority"`
}

// StartResponse is returned when a motion or expression starts
type StartResponse struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// handleStatus returns the driver state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	motions, expressions := s.lib.Count()
	return c.JSON(StatusResponse{
		StateData:   s.driver.Status(),
		Clients:     s.frames.ClientCount(),
		Dropped:     s.frames.Dropped(),
		Motions:     motions,
		Expressions: expressions,
	})
}

// handleModel returns the current model values
func (s *Server) handleModel(c *fiber.Ctx) error {
	return c.JSON(s.driver.Snapshot())
}

// handleListMotions lists motions, optionally filtered by ?q=
func (s *Server) handleListMotions(c *fiber.Ctx) error {
	names := s.lib.List()
	if q := c.Query("q"); q != "" {
		names = s.lib.Search(q)
	}

	infos := make([]library.MotionInfo, 0, len(names))
	for _, name := range names {
		info, err := s.lib.Info(name)
		if err != nil {
			// Unregistered between List and Info
			continue
		}
		infos = append(infos, info)
	}
	return c.JSON(infos)
}

// handleMotionInfo describes one motion
func (s *Server) handleMotionInfo(c *fiber.Ctx) error {
	info, err := s.lib.Info(c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(info)
}

// handleListExpressions lists expressions
func (s *Server) handleListExpressions(c *fiber.Ctx) error {
	names := s.lib.Expressions()
	infos := make([]library.ExpressionInfo, 0, len(names))
	for _, name := range names {
		info, err := s.lib.ExpressionInfo(name)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return c.JSON(infos)
}

// handlePlay starts a motion, at normal priority unless the body says
// otherwise
func (s *Server) handlePlay(c *fiber.Ctx) error {
	name := c.Params("name")

	req := PlayRequest{Priority: int(motion.PriorityNormal)}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid play request: "+err.Error())
		}
	}
	if req.Priority < int(motion.PriorityIdle) || req.Priority > int(motion.PriorityForce) {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("priority %d out of range", req.Priority))
	}

	h, err := s.driver.Play(name, motion.Priority(req.Priority))
	if err != nil {
		return err
	}
	return c.JSON(StartResponse{Name: name, Handle: h.String()})
}

// handleExpression layers an expression
func (s *Server) handleExpression(c *fiber.Ctx) error {
	name := c.Params("name")
	h, err := s.driver.SetExpression(name)
	if err != nil {
		return err
	}
	return c.JSON(StartResponse{Name: name, Handle: h.String()})
}

// handleStop stops all motions and fades expressions out
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.driver.Stop()
	return c.SendStatus(fiber.StatusNoContent)
}

// handleSample evaluates a motion offline at ?fps= (default 30)
func (s *Server) handleSample(c *fiber.Ctx) error {
	name := c.Params("name")
	doc, err := s.lib.Motion(name)
	if err != nil {
		return err
	}

	fps := c.QueryFloat("fps", driver.DefaultFPS)
	sampled, err := driver.Sample(name, doc, s.def, fps)
	if err != nil {
		return err
	}
	return c.JSON(sampled)
}

// handleFramesWS streams frames and events and accepts commands
func (s *Server) handleFramesWS(c *websocket.Conn) {
	client := hub.NewClient(s.frames, c)

	if msg, err := protocol.NewStateMessage(s.driver.Status()); err == nil {
		s.reply(client, msg)
	}

	client.Run()
}

// handleCommand runs on a client's read goroutine.
func (s *Server) handleCommand(c *hub.Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.replyError(c, err)
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		if pong, err := protocol.NewMessage(protocol.TypePong, nil); err == nil {
			s.reply(c, pong)
		}
		return
	case protocol.TypeCommand:
	default:
		s.replyError(c, fmt.Errorf("unexpected message type %q", msg.Type))
		return
	}

	var cmd protocol.CommandData
	if err := msg.ParseData(&cmd); err != nil {
		s.replyError(c, err)
		return
	}

	switch cmd.Action {
	case protocol.ActionPlay:
		p := motion.Priority(cmd.Priority)
		if p == motion.PriorityNone {
			p = motion.PriorityNormal
		}
		_, err = s.driver.Play(cmd.Name, p)
	case protocol.ActionExpression:
		_, err = s.driver.SetExpression(cmd.Name)
	case protocol.ActionStop:
		s.driver.Stop()
	default:
		err = fmt.Errorf("unknown action %q", cmd.Action)
	}
	if err != nil {
		s.replyError(c, err)
		return
	}

	if st, err := protocol.NewStateMessage(s.driver.Status()); err == nil {
		s.reply(c, st)
	}
}

func (s *Server) reply(c *hub.Client, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		s.log.Error("failed to encode reply", "error", err)
		return
	}
	if !c.Send(hub.NewJSONMessage(data)) {
		s.log.Warn("client buffer full, reply dropped", "type", msg.Type)
	}
}

func (s *Server) replyError(c *hub.Client, err error) {
	s.log.Debug("command rejected", "error", err)
	if msg, mErr := protocol.NewErrorMessage(err); mErr == nil {
		s.reply(c, msg)
	}
}
