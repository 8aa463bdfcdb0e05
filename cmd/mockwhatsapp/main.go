package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Mock WhatsApp Cloud API for local testing. Point the bridge at it with
// WHATSAPP_API_URL=http://localhost:5005/v1 and use the form at / to fire
// synthetic inbound webhooks.

const htmlForm = `<!doctype html>
<title>Mock WhatsApp UI</title>
<h2>Send WhatsApp Message (Mock)</h2>
<form method="post" action="/send-ui">
  <label>Phone Number:</label><br>
  <input type="text" name="phone_number" required><br><br>
  <label>Message:</label><br>
  <textarea name="message" required></textarea><br><br>
  <input type="submit" value="Send">
</form>
%s`

func main() {
	port := getEnv("MOCK_PORT", "5005")
	webhookURL := getEnv("WEBHOOK_URL", "http://localhost:8080/webhook")
	displayNumber := getEnv("MOCK_DISPLAY_NUMBER", "1234567890")

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, fmt.Sprintf(htmlForm, ""))
	})

	// Simulates a user sending a message: builds the Cloud API webhook
	// payload and delivers it to the bridge.
	r.POST("/send-ui", func(c *gin.Context) {
		phoneNumber := c.PostForm("phone_number")
		message := c.PostForm("message")

		payload := webhookPayload(displayNumber, phoneNumber, message)
		body, err := json.Marshal(payload)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to build payload: %v", err)
			return
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Post(webhookURL, "application/json", bytes.NewReader(body))
		status := "Message sent to webhook successfully!"
		if err != nil {
			status = fmt.Sprintf("Error sending to webhook: %v", err)
		} else {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				status = fmt.Sprintf("Webhook error: %d", resp.StatusCode)
			}
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, fmt.Sprintf(htmlForm, "<ul><li>"+status+"</li></ul>"))
	})

	// Simulates the Cloud API messages endpoint the bridge replies through.
	r.POST("/v1/:phoneNumberID/messages", func(c *gin.Context) {
		var req map[string]interface{}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Received message send request: %v", req)

		c.JSON(http.StatusOK, gin.H{
			"messages": []gin.H{
				{"id": "wamid.mock-" + uuid.NewString(), "status": "sent"},
			},
		})
	})

	log.Printf("Mock WhatsApp server starting on port %s (webhook target %s)", port, webhookURL)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run mock server: %v", err)
	}
}

func webhookPayload(displayNumber, phoneNumber, message string) map[string]interface{} {
	return map[string]interface{}{
		"object": "whatsapp_business_account",
		"entry": []map[string]interface{}{
			{
				"id": "WABA_ID_123",
				"changes": []map[string]interface{}{
					{
						"value": map[string]interface{}{
							"messaging_product": "whatsapp",
							"metadata": map[string]interface{}{
								"display_phone_number": displayNumber,
								"phone_number_id":      "123456789012345",
							},
							"contacts": []map[string]interface{}{
								{
									"profile": map[string]interface{}{"name": "Mock User"},
									"wa_id":   phoneNumber,
								},
							},
							"messages": []map[string]interface{}{
								{
									"from":      phoneNumber,
									"id":        "wamid.mock-" + uuid.NewString(),
									"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
									"type":      "text",
									"text":      map[string]interface{}{"body": message},
								},
							},
						},
						"field": "messages",
					},
				},
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
