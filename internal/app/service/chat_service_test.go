package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockert/fram-backend/config"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/db"
)

func setupChatServiceTest(t *testing.T, cfg *config.OpenAIConfig) ChatService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	productRepo := repository.NewProductRepository(testDB)
	seedProducts(t, productRepo)

	return NewChatService(cfg, productRepo)
}

func TestChatService_Chat(t *testing.T) {
	var captured openAIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Rhubarb is in season!"}}]}`))
	}))
	defer server.Close()

	chatService := setupChatServiceTest(t, &config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		BaseURL: server.URL,
	})

	reply, err := chatService.Chat(context.Background(), "What is in season?")
	require.NoError(t, err)
	assert.Equal(t, "Rhubarb is in season!", reply)

	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	assert.Equal(t, 250, captured.MaxTokens)
	assert.Equal(t, 0.7, captured.Temperature)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Fram")
	assert.Contains(t, captured.Messages[0].Content, "Rhubarb (45 kr / kg, 1 kg)")
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "What is in season?", captured.Messages[1].Content)
}

func TestChatService_NotConfigured(t *testing.T) {
	chatService := setupChatServiceTest(t, &config.OpenAIConfig{})

	_, err := chatService.Chat(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrChatNotConfigured)
}

func TestChatService_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	chatService := setupChatServiceTest(t, &config.OpenAIConfig{
		APIKey:  "bad-key",
		Model:   "gpt-3.5-turbo",
		BaseURL: server.URL,
	})

	_, err := chatService.Chat(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrChatUpstreamFailed)
}
