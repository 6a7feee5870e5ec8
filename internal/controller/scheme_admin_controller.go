package controller

import (
	"strconv"

	"sahayak-be/internal/dto"
	"sahayak-be/internal/pkg/serverutils"
	"sahayak-be/internal/service"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"

	"github.com/gofiber/fiber/v2"
)

type ISchemeAdminController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Metrics(ctx *fiber.Ctx) error
}

type schemeAdminController struct {
	schemes service.ISchemeService
	metrics service.IMetricsService
}

func NewSchemeAdminController(schemes service.ISchemeService, metrics service.IMetricsService) ISchemeAdminController {
	return &schemeAdminController{schemes: schemes, metrics: metrics}
}

func (c *schemeAdminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/schemes", c.List)
	h.Post("/schemes", c.Create)
	h.Get("/schemes/:id", c.Show)
	h.Put("/schemes/:id", c.Update)
	h.Delete("/schemes/:id", c.Delete)
	h.Get("/schemes/:id/versions/:version", c.History)
	h.Get("/metrics/sessions", c.Metrics)
}

func (c *schemeAdminController) Create(ctx *fiber.Ctx) error {
	var req dto.SchemeUpsertRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.schemes.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Scheme created", res))
}

func (c *schemeAdminController) Update(ctx *fiber.Ctx) error {
	var req dto.SchemeUpsertRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.schemes.Update(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Scheme updated", res))
}

func (c *schemeAdminController) Delete(ctx *fiber.Ctx) error {
	if err := c.schemes.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Scheme deleted", nil))
}

func (c *schemeAdminController) List(ctx *fiber.Ctx) error {
	var req dto.SchemeListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.schemes.List(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Schemes", res))
}

func (c *schemeAdminController) Show(ctx *fiber.Ctx) error {
	lang := i18n.Parse(ctx.Query("language"))

	res, err := c.schemes.Get(ctx.Context(), ctx.Params("id"), lang)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Scheme", res))
}

func (c *schemeAdminController) History(ctx *fiber.Ctx) error {
	version, err := strconv.Atoi(ctx.Params("version"))
	if err != nil {
		return apperror.New(apperror.KindValidation, "version must be a number")
	}

	res, err := c.schemes.History(ctx.Context(), ctx.Params("id"), version)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Scheme version", res))
}

func (c *schemeAdminController) Metrics(ctx *fiber.Ctx) error {
	res, err := c.metrics.Summary(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session metrics", res))
}
