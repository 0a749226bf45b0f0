package api

import (
	"github.com/bobby-s-dev/weather-now/internal/models"
	"github.com/bobby-s-dev/weather-now/internal/orchestrator"
	"github.com/bobby-s-dev/weather-now/internal/presenter"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Session is one client's search screen: an orchestrator bound to a map
// that the client renders remotely.
type Session struct {
	Orchestrator *orchestrator.Orchestrator
	Map          *orchestrator.RemoteMap
}

func (s *Session) Close() {
	s.Orchestrator.Close()
}

type sessionResponse struct {
	ID   string         `json:"id"`
	View presenter.View `json:"view"`
}

type queryRequest struct {
	Text string `json:"text" validate:"max=200"`
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=text map"`
}

type clickRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lon *float64 `json:"lon" validate:"required,longitude"`
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *Handler) newSession() *Session {
	orch := orchestrator.New(h.resolver, h.fetcher, h.options, h.logger)
	remote := orchestrator.NewRemoteMap()
	orch.BindMap(remote)
	return &Session{Orchestrator: orch, Map: remote}
}

func (h *Handler) session(c *fiber.Ctx) (*Session, error) {
	sess, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return sess, nil
}

func (h *Handler) respond(c *fiber.Ctx, state models.ViewState) error {
	return c.JSON(sessionResponse{
		ID:   c.Params("id"),
		View: h.renderer.Render(state),
	})
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	sess := h.newSession()
	id := h.sessions.Create(sess)

	h.logger.Info("Session opened", zap.String("session_id", id))

	return c.Status(fiber.StatusCreated).JSON(sessionResponse{
		ID:   id,
		View: h.renderer.Render(sess.Orchestrator.State()),
	})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *Handler) GetSession(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.State())
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	if !h.sessions.Delete(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetQuery handles PUT /api/v1/sessions/:id/query
func (h *Handler) SetQuery(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req queryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.SetQuery(req.Text))
}

// Submit handles POST /api/v1/sessions/:id/submit
func (h *Handler) Submit(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.Submit(c.UserContext()))
}

// SelectSuggestion handles POST /api/v1/sessions/:id/suggestions/:index
func (h *Handler) SelectSuggestion(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "suggestion index must be a number")
	}

	state, ok := sess.Orchestrator.SelectSuggestionAt(c.UserContext(), index)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "suggestion index out of range")
	}
	return h.respond(c, state)
}

// ShowSuggestions handles POST /api/v1/sessions/:id/suggestions/show
func (h *Handler) ShowSuggestions(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.ShowSuggestions())
}

// DismissSuggestions handles POST /api/v1/sessions/:id/suggestions/dismiss
func (h *Handler) DismissSuggestions(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.DismissSuggestions())
}

// SetMode handles PUT /api/v1/sessions/:id/mode
func (h *Handler) SetMode(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req modeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.SetMode(models.Mode(req.Mode)))
}

// MapClick handles POST /api/v1/sessions/:id/map/click
func (h *Handler) MapClick(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req clickRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := sess.Map.Click(c.UserContext(), *req.Lat, *req.Lon); err != nil {
		return err
	}
	return h.respond(c, sess.Orchestrator.State())
}
