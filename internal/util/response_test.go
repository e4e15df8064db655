package util

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/fadilmartias/plan-analyzer/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestSuccessResponse(t *testing.T) {
	code, body := call(t, func(c *fiber.Ctx) error {
		return SuccessResponse(c, SuccessResponseFormat{
			Code:       fiber.StatusOK,
			Message:    "ok",
			Data:       []int{1, 2},
			Pagination: response.NewPagination(1, 2, 3, 2),
		})
	})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])
	assert.Len(t, body["data"], 2)
	assert.Contains(t, body, "pagination")
	assert.NotContains(t, body, "meta")
}

func TestErrorResponse_DefaultsTo500WithDevMessage(t *testing.T) {
	code, body := call(t, func(c *fiber.Ctx) error {
		return ErrorResponse(c, ErrorResponseFormat{Message: "boom"}, errors.New("db down"))
	})
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "db down", body["dev_message"])
	assert.NotEmpty(t, body["trace"])
}

func TestFormErrorResponse(t *testing.T) {
	code, body := call(t, func(c *fiber.Ctx) error {
		return FormErrorResponse(c, NewFormError("invalid submission", map[string]string{"file": "required"}))
	})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "invalid submission", body["message"])
	assert.Equal(t, map[string]any{"file": "required"}, body["details"])
	assert.NotContains(t, body, "trace")
}
