package favorites

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ToggleRequest struct {
	PropertyID string `json:"property_id"`
}

type FavoriteHandler struct {
	service *FavoriteService
}

func NewFavoriteHandler(service *FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	listingID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Property ID is required")
	}

	favorited, err := h.service.Toggle(c.UserContext(), userID, listingID)
	if err != nil {
		return err
	}

	message := "Removed from favorites"
	if favorited {
		message = "Added to favorites"
	}
	return c.JSON(fiber.Map{"favorited": favorited, "message": message})
}

func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	page := database.NewPage(c.QueryInt("page", 1), c.QueryInt("limit", database.DefaultPageSize))
	listings, pagination, err := h.service.List(c.UserContext(), userID, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorites": listings, "pagination": pagination})
}

func (h *FavoriteHandler) Check(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	listingID, err := uuid.Parse(c.Params("property_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
	}

	favorited, err := h.service.Check(c.UserContext(), userID, listingID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}
