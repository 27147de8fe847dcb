package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clockert/fram-backend/config"
	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/pkg/logger"
)

var (
	ErrChatNotConfigured  = errors.New("chat assistant is not configured")
	ErrChatUpstreamFailed = errors.New("chat assistant is unavailable")
)

type ChatService interface {
	Chat(ctx context.Context, message string) (string, error)
}

type chatService struct {
	cfg         *config.OpenAIConfig
	productRepo repository.ProductRepository
	client      *http.Client
}

func NewChatService(cfg *config.OpenAIConfig, productRepo repository.ProductRepository) ChatService {
	return &chatService{
		cfg:         cfg,
		productRepo: productRepo,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Chat forwards a storefront message to the assistant with a system prompt
// built from the current catalog.
func (s *chatService) Chat(ctx context.Context, message string) (string, error) {
	if s.cfg.APIKey == "" {
		return "", ErrChatNotConfigured
	}

	products, err := s.productRepo.FindAll()
	if err != nil {
		// An empty product list degrades the prompt, not the conversation.
		logger.Error("Failed to load catalog for chat prompt", err)
		products = nil
	}

	reply, err := s.callOpenAI(ctx, buildSystemPrompt(products), message)
	if err != nil {
		logger.Error("Chat completion failed", err)
		return "", ErrChatUpstreamFailed
	}
	return reply, nil
}

// buildSystemPrompt assembles the assistant's instructions with the current
// product list so answers about stock and prices stay accurate.
func buildSystemPrompt(products []model.Product) string {
	var list strings.Builder
	for _, p := range products {
		list.WriteString(fmt.Sprintf("- %s (%s", p.Name, p.Price))
		if p.PackageSize != "" {
			list.WriteString(", " + p.PackageSize)
		}
		list.WriteString(")\n")
	}

	return `You are a helpful assistant for Fram, a sustainable food delivery service in Norway.

KEY INFORMATION ABOUT FRAM:
- Fram connects customers directly with fresh products from local farms in Norway
- All partner farms follow sustainable and ecological agricultural practices
- We offer seasonal produce with an emphasis on local Norwegian varieties
- Our main partner farm is Braastad Gaard in Hamar region
- We use a circular container system where packaging is collected, cleaned, and reused
- Deliveries occur within 48 hours of harvest for maximum freshness
- We focus on transparency about where food comes from and how it's grown

CURRENT SEASONAL PRODUCTS IN STOCK:
` + list.String() + `
YOUR PERSONALITY:
- Friendly, warm, and conversational
- Knowledgeable about Norwegian agriculture and sustainability
- Passionate about local food systems and reducing food miles

WHEN ANSWERING QUESTIONS:
- Keep responses concise and friendly (under 50 words when possible)
- Highlight sustainability benefits when relevant
- Recommend seasonal products based on the current month in Norway
- If asked about nutrition info, mention customers can see detailed nutrition on individual product pages
- When customers ask about available products, recommend items from our current stock list
- Provide accurate pricing information from our product list when asked
- Never make up specific information about prices, delivery areas, or other logistics

If you're unable to answer a specific question about Fram due to lack of information, acknowledge this politely and suggest contacting customer service for specific details.`
}

func (s *chatService) callOpenAI(ctx context.Context, systemPrompt, message string) (string, error) {
	payload := openAIRequest{
		Model: s.cfg.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		MaxTokens:   250,
		Temperature: 0.7,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
