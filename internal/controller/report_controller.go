package controller

import (
	"fmt"

	"fisiqia-be/internal/dto"
	"fisiqia-be/internal/pkg/serverutils"
	"fisiqia-be/internal/service"
	"fisiqia-be/pkg/section"

	"github.com/gofiber/fiber/v2"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{
		reportService: reportService,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	r.Post(section.Report.Route(), c.Generate)
}

func (c *reportController) Generate(ctx *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Normalize()

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.Generate(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Status(fiber.StatusOK).Send(res.Content)
}
