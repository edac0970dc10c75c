package service

import (
	"context"

	"consensus-be/internal/domain"
)

// YelpService defines the interface for the business search AI
type YelpService interface {
	// Chat sends a natural language query, optionally continuing an
	// existing conversation via the chat id.
	Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)

	// SearchBusinesses is the one-shot form that returns only the
	// extracted businesses.
	SearchBusinesses(ctx context.Context, query string, latitude, longitude *float64, locale string) ([]domain.Business, error)
}

// GeminiService defines the interface for multimodal analysis
type GeminiService interface {
	// ProcessAudio extracts transcription, intent and a search query
	// from an audio clip.
	ProcessAudio(ctx context.Context, audio []byte, mimeType, prompt string) (*domain.AnalysisResponse, error)

	// ProcessImage analyzes a food or dining scene image.
	ProcessImage(ctx context.Context, image []byte, mimeType, prompt string) (*domain.AnalysisResponse, error)

	// TranscribeAudio converts speech to text with no further analysis.
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)

	// MultimodalSearch combines text, audio and image inputs into one
	// analysis with a unified search query.
	MultimodalSearch(ctx context.Context, textQuery string, audio, image []byte, audioMime, imageMime string) (*domain.AnalysisResponse, error)
}

// CalendarService defines the interface for the calendar integration
type CalendarService interface {
	// AuthorizationURL builds the OAuth consent URL for the given
	// CSRF state.
	AuthorizationURL(state string) string

	// ExchangeCode trades the OAuth callback code for tokens.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error)

	// CreateEvent inserts an event into the user's primary calendar.
	CreateEvent(ctx context.Context, accessToken, refreshToken string, details *domain.EventDetails) (*domain.CreateEventResponse, error)
}

// Services aggregates all service interfaces
type Services struct {
	Yelp     YelpService
	Gemini   GeminiService
	Calendar CalendarService
}
