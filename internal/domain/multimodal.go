package domain

import "encoding/json"

// AudioProcessRequest carries a base64 encoded audio payload for analysis
type AudioProcessRequest struct {
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

// ImageProcessRequest carries a base64 encoded image payload for analysis
type ImageProcessRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

// MultimodalSearchRequest combines text, audio and image inputs into a
// single search. The derived query is fed straight into business search.
type MultimodalSearchRequest struct {
	TextQuery     string   `json:"text_query,omitempty"`
	AudioBase64   string   `json:"audio_base64,omitempty"`
	ImageBase64   string   `json:"image_base64,omitempty"`
	AudioMimeType string   `json:"audio_mime_type,omitempty"`
	ImageMimeType string   `json:"image_mime_type,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Locale        string   `json:"locale,omitempty"`
}

// AnalysisResponse is a model answer, usually a JSON document produced
// with a JSON response MIME type.
type AnalysisResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error,omitempty"`
}

// TranscriptionResponse is a plain speech-to-text result
type TranscriptionResponse struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription"`
}

// MultimodalSearchResponse is the combined analysis plus the businesses
// found with the derived query.
type MultimodalSearchResponse struct {
	Success     bool            `json:"success"`
	Analysis    json.RawMessage `json:"analysis"`
	SearchQuery string          `json:"search_query"`
	Businesses  []Business      `json:"businesses"`
}
