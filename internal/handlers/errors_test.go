package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(exposeDetail bool, err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(exposeDetail)})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func errorBody(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestErrorHandler(t *testing.T) {
	cause := errors.New("pq: connection refused")

	tests := []struct {
		name        string
		err         error
		expose      bool
		wantStatus  int
		wantMessage string
		wantDetail  string
	}{
		{"validation", apperr.Validation("Title is required"), false, 400, "Title is required", ""},
		{"limit", apperr.Limit("Too many files"), false, 400, "Too many files", ""},
		{"not found", apperr.NotFound("Property not found"), false, 404, "Property not found", ""},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "Invalid property ID"), false, 400, "Invalid property ID", ""},
		{"storage hidden detail", apperr.Storage("Failed to create property", cause), false, 500, "Failed to create property", ""},
		{"storage with detail", apperr.Storage("Failed to create property", cause), true, 500, "Failed to create property", cause.Error()},
		{"plain error", cause, false, 500, "Internal server error", ""},
		{"plain error with detail", cause, true, 500, "Internal server error", cause.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := errorApp(tt.expose, tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := errorBody(t, resp)
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantDetail, body.Detail)
		})
	}
}
