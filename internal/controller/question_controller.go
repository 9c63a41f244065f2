package controller

import (
	"fisiqia-be/internal/dto"
	"fisiqia-be/internal/pkg/apperror"
	"fisiqia-be/internal/pkg/serverutils"
	"fisiqia-be/internal/service"
	"fisiqia-be/pkg/section"

	"github.com/gofiber/fiber/v2"
)

const invalidBodyMessage = "Corpo da requisição inválido: envie JSON."

type IQuestionController interface {
	RegisterRoutes(r fiber.Router)
	Ask(sec section.Section) fiber.Handler
	History(ctx *fiber.Ctx) error
}

type questionController struct {
	questionService service.IQuestionService
}

func NewQuestionController(questionService service.IQuestionService) IQuestionController {
	return &questionController{
		questionService: questionService,
	}
}

// RegisterRoutes mounts one POST route per askable section (/visao, /materiais, ..., /perguntar).
func (c *questionController) RegisterRoutes(r fiber.Router) {
	for _, sec := range section.All {
		if !sec.Askable() {
			continue
		}
		r.Post(sec.Route(), c.Ask(sec))
	}
	r.Get("/historico/:session_id", c.History)
}

// Ask binds the section once, at routing time.
func (c *questionController) Ask(sec section.Section) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var req dto.QuestionRequest
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
		req.Normalize()

		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}

		res, err := c.questionService.Ask(ctx.UserContext(), sec, &req)
		if err != nil {
			return err
		}

		return ctx.JSON(res)
	}
}

func (c *questionController) History(ctx *fiber.Ctx) error {
	req := dto.HistoryRequest{
		SessionId: ctx.Params("session_id"),
		Project:   firstQuery(ctx, "projeto", "project"),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.questionService.History(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Histórico da sessão", res))
}

// parseBody accepts an empty body, which auto-load sections send.
func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		return apperror.Wrap(apperror.KindValidation, invalidBodyMessage, err)
	}
	return nil
}

func firstQuery(ctx *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := ctx.Query(k); v != "" {
			return v
		}
	}
	return ""
}
