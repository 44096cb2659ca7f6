package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_SystemLogs(t *testing.T) {
	db := dbtest.Open(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.SystemLog{
		{Timestamp: base, Level: "ERROR", Message: "upload failed", RequestID: "req-1", Action: "create_listing"},
		{Timestamp: base.Add(time.Minute), Level: "ERROR", Message: "db down", RequestID: "req-2", Action: "list_listings"},
		{Timestamp: base.Add(2 * time.Minute), Level: "ERROR", Message: "smtp refused", RequestID: "req-3", Action: "create_listing"},
		{Timestamp: base.Add(3 * time.Minute), Level: "WARN", Message: "cache miss storm", RequestID: "req-4"},
	}
	require.NoError(t, db.Create(&logs).Error)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(false)})
	app.Get("/logs", NewAdminHandler(db).SystemLogs)

	type page struct {
		Data       []models.SystemLog  `json:"data"`
		Pagination database.Pagination `json:"pagination"`
	}
	fetch := func(query string) page {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/logs"+query, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out page
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	}

	all := fetch("")
	require.Len(t, all.Data, 4)
	assert.Equal(t, "cache miss storm", all.Data[0].Message)
	assert.EqualValues(t, 4, all.Pagination.Total)

	errs := fetch("?level=ERROR&action=create_listing&limit=1")
	require.Len(t, errs.Data, 1)
	assert.Equal(t, "smtp refused", errs.Data[0].Message)
	assert.EqualValues(t, 2, errs.Pagination.Total)
	assert.Equal(t, 2, errs.Pagination.TotalPages)
	assert.True(t, errs.Pagination.HasNext)

	second := fetch("?level=ERROR&action=create_listing&limit=1&page=2")
	require.Len(t, second.Data, 1)
	assert.Equal(t, "upload failed", second.Data[0].Message)
	assert.False(t, second.Pagination.HasNext)

	byRequest := fetch("?request_id=req-2")
	require.Len(t, byRequest.Data, 1)
	assert.Equal(t, "db down", byRequest.Data[0].Message)

	none := fetch("?level=FATAL")
	assert.NotNil(t, none.Data)
	assert.Empty(t, none.Data)
}

func TestHealthHandler_Check(t *testing.T) {
	db := dbtest.Open(t)
	app := fiber.New()
	app.Get("/health", NewHealthHandler(db).Check)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.HealthResponse
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.DB)
	_, err = time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)
}
