package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatbridge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(apiURL string) *Client {
	return NewClient(&config.Config{
		WhatsAppAPIURL: apiURL,
		WhatsAppToken:  "test-token",
		PhoneNumberID:  "555",
		SendTimeout:    5 * time.Second,
	})
}

func TestSendMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages": [{"id": "wamid.test-1"}]}`))
	}))
	defer srv.Close()

	id, err := testClient(srv.URL).SendMessage(context.Background(), "2000", "Great, confirmed!")
	require.NoError(t, err)
	assert.Equal(t, "wamid.test-1", id)

	assert.Equal(t, "/555/messages", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "2000", gotBody["to"])
	assert.Equal(t, "text", gotBody["type"])
	assert.Equal(t, map[string]interface{}{"body": "Great, confirmed!"}, gotBody["text"])
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SendMessage(context.Background(), "2000", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error")
}

func TestSendMessageContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).SendMessage(ctx, "2000", "hi")
	require.Error(t, err)
}
