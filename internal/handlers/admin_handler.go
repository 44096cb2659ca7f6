package handlers

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// SystemLogs lists persisted error logs, newest first. Optional filters:
// level, request_id, action.
func (h *AdminHandler) SystemLogs(c *fiber.Ctx) error {
	page := database.NewPage(c.QueryInt("page", 1), c.QueryInt("limit", database.DefaultPageSize))

	filtered := func() *gorm.DB {
		query := h.db.WithContext(c.UserContext()).Model(&models.SystemLog{})
		if level := c.Query("level"); level != "" {
			query = query.Where("level = ?", level)
		}
		if requestID := c.Query("request_id"); requestID != "" {
			query = query.Where("request_id = ?", requestID)
		}
		if action := c.Query("action"); action != "" {
			query = query.Where("action = ?", action)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return apperr.FromDB(err, "failed to count system logs")
	}

	logs := make([]models.SystemLog, 0)
	if err := filtered().Order("timestamp DESC").Scopes(database.Paginate(page)).Find(&logs).Error; err != nil {
		return apperr.FromDB(err, "failed to list system logs")
	}

	return c.JSON(fiber.Map{
		"data":       logs,
		"pagination": page.Result(total),
	})
}
