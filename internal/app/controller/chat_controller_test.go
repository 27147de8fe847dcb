package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockert/fram-backend/config"
	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/app/service"
	"github.com/clockert/fram-backend/internal/db"
)

func setupChatControllerTest(t *testing.T, cfg *config.OpenAIConfig) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	productRepo := repository.NewProductRepository(testDB)
	chatController := NewChatController(service.NewChatService(cfg, productRepo))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/chat", chatController.Chat)
	return router
}

func postChat(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatController_Chat(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Welcome to Fram!"}}]}`))
	}))
	defer upstream.Close()

	router := setupChatControllerTest(t, &config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		BaseURL: upstream.URL,
	})

	w := postChat(t, router, gin.H{"message": "Hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Welcome to Fram!", resp.Reply)
}

func TestChatController_MissingMessage(t *testing.T) {
	router := setupChatControllerTest(t, &config.OpenAIConfig{APIKey: "test-key"})

	w := postChat(t, router, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message is required")
}

func TestChatController_NotConfigured(t *testing.T) {
	router := setupChatControllerTest(t, &config.OpenAIConfig{})

	w := postChat(t, router, gin.H{"message": "Hello"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "CHAT_NOT_CONFIGURED")
}

func TestChatController_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := setupChatControllerTest(t, &config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-3.5-turbo",
		BaseURL: upstream.URL,
	})

	w := postChat(t, router, gin.H{"message": "Hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "CHAT_UPSTREAM_FAILED")
}
