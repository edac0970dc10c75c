package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"consensus-be/internal/domain"
	"consensus-be/internal/service"
	"consensus-be/pkg/errors"
	"consensus-be/pkg/logger"

	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

const defaultAudioPrompt = `Please analyze this audio and provide:
1. A complete transcription of the speech
2. The user's intent (what they're looking for)
3. Extract any specific requirements mentioned (cuisine type, price range, dietary restrictions, location, etc.)

Format your response as JSON with these fields:
- transcription: the full text
- intent: brief description of what they want
- requirements: object with extracted details (cuisine, price, dietary, location, etc.)
- search_query: a natural language search query for Yelp based on the audio`

const defaultImagePrompt = `Please analyze this image and provide:
1. What type of food or dining scene is shown
2. Identify specific dishes, cuisines, or restaurant types visible
3. Describe the ambiance, setting, or dining style if visible
4. Extract any text visible in the image (menu items, restaurant names, etc.)
5. Suggest what the user might be looking for based on this image

Format your response as JSON with these fields:
- description: detailed description of what's in the image
- food_items: list of identified food items or dishes
- cuisine_type: detected cuisine type(s)
- ambiance: description of setting/ambiance if visible
- extracted_text: any text visible in the image
- search_suggestions: list of search queries that would find similar places/food
- dietary_notes: any visible dietary attributes (vegan, gluten-free, etc.)`

const multimodalAnalysisPrompt = `Provide a comprehensive analysis in JSON format:
- combined_intent: what the user is looking for overall
- cuisine_preferences: extracted cuisine types
- dietary_requirements: any dietary needs
- ambiance_preferences: preferred setting/ambiance
- price_range: budget indication
- location_hints: any location mentions
- unified_search_query: single best search query for Yelp
- confidence: how confident you are (0-1)`

// Service implements the GeminiService interface
type Service struct {
	client *genai.Client
	logger *logger.Logger
}

// NewService creates a new Gemini client
func NewService(ctx context.Context, apiKey string, log *logger.Logger) (service.GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewInternalError("Failed to initialize Gemini client", err)
	}
	return &Service{client: client, logger: log}, nil
}

// ProcessAudio analyzes an audio clip for transcription, intent and a
// derived search query.
func (s *Service) ProcessAudio(ctx context.Context, audio []byte, mimeType, prompt string) (*domain.AnalysisResponse, error) {
	if mimeType == "" {
		mimeType = "audio/mp3"
	}
	if prompt == "" {
		prompt = defaultAudioPrompt
	}
	result, err := s.generateJSON(ctx, prompt, audio, mimeType)
	if err != nil {
		s.logger.WithError(err).Error("Failed to process audio")
		return nil, err
	}
	s.logger.Debug("Audio processed successfully")
	return &domain.AnalysisResponse{Success: true, Result: result}, nil
}

// ProcessImage analyzes a food or dining scene image
func (s *Service) ProcessImage(ctx context.Context, image []byte, mimeType, prompt string) (*domain.AnalysisResponse, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if prompt == "" {
		prompt = defaultImagePrompt
	}
	result, err := s.generateJSON(ctx, prompt, image, mimeType)
	if err != nil {
		s.logger.WithError(err).Error("Failed to process image")
		return nil, err
	}
	s.logger.Debug("Image processed successfully")
	return &domain.AnalysisResponse{Success: true, Result: result}, nil
}

// TranscribeAudio converts speech to text
func (s *Service) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/mp3"
	}
	parts := []*genai.Part{
		genai.NewPartFromText("Generate a transcript of the speech in this audio."),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := s.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to transcribe audio")
		return "", errors.NewExternalError("Failed to transcribe audio", err)
	}
	return resp.Text(), nil
}

// MultimodalSearch combines text, audio and image inputs into a single
// analysis with a unified search query.
func (s *Service) MultimodalSearch(ctx context.Context, textQuery string, audio, image []byte, audioMime, imageMime string) (*domain.AnalysisResponse, error) {
	if audioMime == "" {
		audioMime = "audio/mp3"
	}
	if imageMime == "" {
		imageMime = "image/jpeg"
	}

	promptParts := []string{"Based on the provided inputs, help me find the perfect restaurant or dining experience."}
	mediaParts := []*genai.Part{}

	if textQuery != "" {
		promptParts = append(promptParts, "Text query: "+textQuery)
	}
	if len(audio) > 0 {
		promptParts = append(promptParts, "Analyze the audio for additional context.")
		mediaParts = append(mediaParts, genai.NewPartFromBytes(audio, audioMime))
	}
	if len(image) > 0 {
		promptParts = append(promptParts, "Analyze the image for visual preferences.")
		mediaParts = append(mediaParts, genai.NewPartFromBytes(image, imageMime))
	}
	promptParts = append(promptParts, multimodalAnalysisPrompt)

	parts := append([]*genai.Part{genai.NewPartFromText(strings.Join(promptParts, "\n"))}, mediaParts...)
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := s.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to run multimodal search")
		return nil, errors.NewExternalError("Failed to process multimodal search", err)
	}

	s.logger.Debug("Multimodal search processed successfully")
	return &domain.AnalysisResponse{Success: true, Result: json.RawMessage(resp.Text())}, nil
}

func (s *Service) generateJSON(ctx context.Context, prompt string, data []byte, mimeType string) (json.RawMessage, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := s.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, errors.NewExternalError("Gemini request failed", err)
	}
	return json.RawMessage(resp.Text()), nil
}
