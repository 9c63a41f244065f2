package serverutils

import (
	"fisiqia-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

// ErrorResponse is the error body every endpoint answers with:
// {"erro": message, "codigo": kind} plus the error's details.
func ErrorResponse(kind apperror.Kind, message string, details map[string]interface{}) fiber.Map {
	body := fiber.Map{}
	for k, v := range details {
		body[k] = v
	}
	body["erro"] = message
	body["codigo"] = string(kind)
	return body
}
