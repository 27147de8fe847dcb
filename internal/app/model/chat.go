package model

// ChatRequest is the storefront chat widget's message to the assistant.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's reply back to the widget.
type ChatResponse struct {
	Reply string `json:"reply"`
}
