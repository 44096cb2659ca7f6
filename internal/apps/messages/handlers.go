package messages

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ReceiverID string  `json:"receiver_id"`
	PropertyID *string `json:"property_id"`
	Subject    string  `json:"subject"`
	Message    string  `json:"message"`
}

type MessageHandler struct {
	service *MessageService
}

func NewMessageHandler(service *MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid receiver ID is required")
	}

	var listingID *uuid.UUID
	if req.PropertyID != nil && *req.PropertyID != "" {
		id, err := uuid.Parse(*req.PropertyID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid property ID")
		}
		listingID = &id
	}

	msg, err := h.service.Send(c.UserContext(), userID, receiverID, listingID, req.Subject, req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	views, pagination, err := h.service.Inbox(c.UserContext(), userID, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": views, "pagination": pagination})
}

func (h *MessageHandler) Sent(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	views, pagination, err := h.service.Sent(c.UserContext(), userID, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": views, "pagination": pagination})
}

func pageOf(c *fiber.Ctx) database.Page {
	return database.NewPage(c.QueryInt("page", 1), c.QueryInt("limit", database.DefaultPageSize))
}
