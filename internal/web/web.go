package web

import (
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/goserg/ratingengine/internal/config"
	"github.com/goserg/ratingengine/internal/domain"
	"github.com/goserg/ratingengine/internal/replay"
	"github.com/goserg/ratingengine/internal/service"
	"github.com/goserg/ratingengine/internal/web/webpath"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	logKey          = "log"
)

type Server struct {
	engine *service.Engine
	app    *fiber.App
	cfg    config.Server
	log    *logrus.Entry
	now    func() time.Time
}

func New(engine *service.Engine, cfg config.Server, l *logrus.Logger) *Server {
	server := Server{
		engine: engine,
		cfg:    cfg,
		log: l.WithFields(map[string]interface{}{
			"from": "web",
		}),
		now: time.Now,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          server.handleError,
	})
	app.Use(server.requestID)

	app.Get(webpath.Api, server.handleIndex)
	app.Get(webpath.ApiRatings, server.handleRatings)
	app.Get(webpath.ApiRating, server.handleRating)
	app.Get(webpath.ApiMatches, server.handleMatches)
	app.Post(webpath.ApiMatches, server.handleCreateMatch)
	app.Delete(webpath.ApiMatches, server.handleReset)
	app.Get(webpath.ApiTrajectory, server.handleTrajectory)
	app.Get(webpath.ApiVerify, server.handleVerify)
	app.Get(webpath.Metrics, adaptor.HTTPHandler(
		promhttp.HandlerFor(engine.Metrics().Registry(), promhttp.HandlerOpts{}),
	))
	server.app = app
	return &server
}

func (s *Server) Serve() error {
	return s.app.Listen(s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestID tags the request with an id and a logger carrying it.
func (s *Server) requestID(ctx *fiber.Ctx) error {
	id := ctx.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Set(requestIDHeader, id)
	ctx.Locals(requestIDKey, id)
	ctx.Locals(logKey, s.log.WithField(requestIDKey, id))
	return ctx.Next()
}

func (s *Server) logFor(ctx *fiber.Ctx) *logrus.Entry {
	if entry, ok := ctx.Locals(logKey).(*logrus.Entry); ok {
		return entry
	}
	return s.log
}

func (s *Server) handleError(ctx *fiber.Ctx, err error) error {
	status := statusOf(err)
	entry := s.logFor(ctx).WithError(err).WithFields(logrus.Fields{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	id, _ := ctx.Locals(requestIDKey).(string)
	return ctx.Status(status).JSON(newErrorResponse(id, err))
}

func (s *Server) handleIndex(ctx *fiber.Ctx) error {
	return ctx.JSON(webpath.Path())
}

func (s *Server) handleRatings(ctx *fiber.Ctx) error {
	return ctx.JSON(newStandingViews(s.engine.Snapshot()))
}

func (s *Server) handleRating(ctx *fiber.Ctx) error {
	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	card, err := s.engine.Competitor(name)
	if err != nil {
		return err
	}
	return ctx.JSON(newCardView(card))
}

func (s *Server) handleMatches(ctx *fiber.Ctx) error {
	matches := s.engine.Matches()
	switch ctx.Query("order") {
	case "", "insertion":
	case "chronological":
		matches = replay.Chronological(matches)
	case "recent":
		matches = replay.Chronological(matches)
		slices.Reverse(matches)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "order must be insertion, chronological or recent")
	}
	return ctx.JSON(newMatchViews(matches))
}

func (s *Server) handleCreateMatch(ctx *fiber.Ctx) error {
	var req createMatch
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sub, err := s.engine.Submit(ctx.UserContext(), req.convertToDomainMatch(s.now()))
	if err != nil {
		return err
	}
	s.logFor(ctx).WithFields(logrus.Fields{
		"winner":    sub.Winner.Name,
		"loser":     sub.Loser.Name,
		"date":      sub.Match.Date.Format(domain.DateLayout),
		"backdated": sub.Backdated,
	}).Info("match submitted")
	return ctx.Status(fiber.StatusCreated).JSON(newSubmissionView(sub))
}

func (s *Server) handleReset(ctx *fiber.Ctx) error {
	if err := s.engine.Reset(ctx.UserContext()); err != nil {
		return err
	}
	s.logFor(ctx).Info("ratings reset")
	return ctx.JSON(fiber.Map{"reset": true})
}

func (s *Server) handleTrajectory(ctx *fiber.Ctx) error {
	points := s.engine.Trajectory()
	if name := ctx.Query("competitor"); name != "" {
		card, err := s.engine.Competitor(name)
		if err != nil {
			return err
		}
		points = card.Trajectory
	}
	return ctx.JSON(newPointViews(points))
}

func (s *Server) handleVerify(ctx *fiber.Ctx) error {
	return ctx.JSON(newVerifyView(s.engine.Verify()))
}
