package messages

import (
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type MessagesPlugin struct {
	service *MessageService
}

func New(service *MessageService) *MessagesPlugin {
	return &MessagesPlugin{service: service}
}

func (p *MessagesPlugin) ID() string { return "messages" }

func (p *MessagesPlugin) Models() []interface{} {
	return []interface{}{&models.Message{}}
}

func (p *MessagesPlugin) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	handler := NewMessageHandler(p.service)

	messages := router.Group("/messages", auth)
	messages.Post("/", handler.Send)
	messages.Get("/inbox", handler.Inbox)
	messages.Get("/sent", handler.Sent)
}
