package webhook

import (
	"log"
	"net/http"

	"chatbridge/internal/config"
	"chatbridge/internal/dispatch"
	"chatbridge/pkg/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Config     *config.Config
	Dispatcher *dispatch.Dispatcher
}

func NewHandler(cfg *config.Config, dispatcher *dispatch.Dispatcher) *Handler {
	return &Handler{
		Config:     cfg,
		Dispatcher: dispatcher,
	}
}

// VerifyWebhook answers the Cloud API subscription handshake.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token != "" {
		if mode == "subscribe" && token == h.Config.VerifyToken {
			log.Println("Webhook verified successfully!")
			c.String(http.StatusOK, challenge)
		} else {
			c.Status(http.StatusForbidden)
		}
	} else {
		c.Status(http.StatusBadRequest)
	}
}

// HandleMessage normalizes one inbound webhook delivery and hands it to the
// dispatcher. Any structurally-recognized POST is acknowledged with 200,
// even when the payload is malformed or no firm matches: the provider
// retry-storms endpoints that fail to acknowledge.
func (h *Handler) HandleMessage(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding webhook JSON: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	msg, ok := normalize(payload)
	if !ok {
		log.Println("No contacts or messages found in webhook payload")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	if msg.Type != "text" {
		log.Printf("Ignoring %s message from %s", msg.Type, msg.Inbound.From)
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	log.Printf("Received text message from %s: %s", msg.Inbound.From, msg.Inbound.Body)
	h.Dispatcher.Dispatch(c.Request.Context(), msg.Inbound)

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

type normalized struct {
	Inbound dispatch.InboundMessage
	Type    string
}

// normalize flattens the nested Cloud API payload into the dispatcher's
// input record. It reports false when the payload carries no message.
func normalize(payload models.WebhookPayload) (normalized, bool) {
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return normalized{}, false
	}

	entry := payload.Entry[0]
	value := entry.Changes[0].Value
	if len(value.Contacts) == 0 || len(value.Messages) == 0 {
		return normalized{}, false
	}

	contact := value.Contacts[0]
	message := value.Messages[0]

	return normalized{
		Inbound: dispatch.InboundMessage{
			WabaID:          entry.ID,
			FirmPhoneNumber: value.Metadata.DisplayPhoneNumber,
			From:            contact.WaID,
			ProfileName:     contact.Profile.Name,
			Body:            message.Text.Body,
			MessageID:       message.ID,
		},
		Type: message.Type,
	}, true
}
