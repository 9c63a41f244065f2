package serverutils

import (
	"errors"

	"fisiqia-be/internal/pkg/apperror"
	"fisiqia-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const genericErrorMessage = "Erro interno ao processar a requisição."

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindTopicDenied, apperror.KindIncompleteReport:
		return fiber.StatusBadRequest
	case apperror.KindNothingToReport, apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInconsistentReport:
		return fiber.StatusConflict
	default:
		// upstream, upstream_timeout, report_failed, internal
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into JSON bodies.
// Only apperror messages reach the client; anything else is logged and
// replaced with a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

// WriteError is the fiber.Config.ErrorHandler form of the middleware, for errors
// raised outside the handler chain (body limit, panics turned into errors).
func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := StatusFor(appErr.Kind)
		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", appErr.Message, map[string]interface{}{
				"path":  ctx.Path(),
				"kind":  string(appErr.Kind),
				"error": errString(appErr.Err),
			})
		} else {
			log.Warn("HTTP", appErr.Message, map[string]interface{}{
				"path": ctx.Path(),
				"kind": string(appErr.Kind),
			})
		}
		return ctx.Status(status).JSON(ErrorResponse(appErr.Kind, appErr.Message, appErr.Details))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		kind := apperror.KindInternal
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			kind = apperror.KindNotFound
		case fiberErr.Code < fiber.StatusInternalServerError:
			kind = apperror.KindValidation
		}
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(kind, fiberErr.Message, nil))
	}

	log.Error("HTTP", "Unhandled error", map[string]interface{}{
		"path":  ctx.Path(),
		"error": err.Error(),
	})
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(apperror.KindInternal, genericErrorMessage, nil))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
