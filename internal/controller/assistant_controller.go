package controller

import (
	"sahayak-be/internal/dto"
	"sahayak-be/internal/pkg/serverutils"
	"sahayak-be/internal/service"
	ws "sahayak-be/internal/websocket"
	"sahayak-be/pkg/i18n"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Snapshot(ctx *fiber.Ctx) error
	Turn(ctx *fiber.Ctx) error
	AudioTurn(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IConversationService
	hub     *ws.Hub
}

func NewAssistantController(service service.IConversationService, hub *ws.Hub) IAssistantController {
	return &assistantController{service: service, hub: hub}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions/:id", c.Snapshot)
	h.Delete("/sessions/:id", c.EndSession)
	h.Post("/turns", c.Turn)
	h.Post("/turns/audio", c.AudioTurn)

	h.Use("/sessions/:id/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/sessions/:id/ws", websocket.New(func(conn *websocket.Conn) {
		ws.ServeWs(c.hub, conn, conn.Params("id"))
	}))
}

func (c *assistantController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Language != "" {
		ctx.Locals(serverutils.LangLocal, i18n.Parse(req.Language))
	}

	res, err := c.service.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *assistantController) Snapshot(ctx *fiber.Ctx) error {
	res, err := c.service.Snapshot(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	ctx.Locals(serverutils.LangLocal, i18n.Parse(res.Language))
	return ctx.JSON(serverutils.SuccessResponse("Session snapshot", res))
}

func (c *assistantController) Turn(ctx *fiber.Ctx) error {
	var req dto.TurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Language != "" {
		ctx.Locals(serverutils.LangLocal, i18n.Parse(req.Language))
	}

	res, err := c.service.Turn(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn completed", res))
}

func (c *assistantController) AudioTurn(ctx *fiber.Ctx) error {
	var req dto.AudioTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AudioTurn(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn completed", res))
}

func (c *assistantController) EndSession(ctx *fiber.Ctx) error {
	var req dto.EndSessionRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	if err := c.service.EndSession(ctx.Context(), ctx.Params("id"), req.Persist); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session ended", nil))
}
