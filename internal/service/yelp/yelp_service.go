package yelp

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"time"

	"consensus-be/internal/domain"
	"consensus-be/internal/service"
	"consensus-be/pkg/errors"
	"consensus-be/pkg/logger"
	"consensus-be/pkg/redis"
)

const chatPath = "/ai/chat/v2"

// Service implements the YelpService interface over the Yelp AI Chat API
type Service struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	logger     *logger.Logger
}

// NewService creates a new Yelp AI client. The cache client may be nil,
// first-turn responses are then simply not cached.
func NewService(apiKey, baseURL string, cache *redis.Client, log *logger.Logger) service.YelpService {
	return &Service{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		logger:     log,
	}
}

// Chat sends a query to the Yelp AI Chat API and extracts the business
// entities from the answer. First-turn responses are cached briefly;
// follow-up turns depend on conversation state and are always fetched.
func (s *Service) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	payload := map[string]interface{}{
		"query": req.Query,
	}
	if uc := req.UserContext; uc != nil {
		locale := uc.Locale
		if locale == "" {
			locale = "en_US"
		}
		if uc.Latitude != nil && uc.Longitude != nil {
			payload["user_context"] = map[string]interface{}{
				"locale":    locale,
				"latitude":  *uc.Latitude,
				"longitude": *uc.Longitude,
			}
		} else {
			payload["user_context"] = map[string]interface{}{
				"locale": locale,
			}
		}
	}
	if req.ChatID != "" {
		payload["chat_id"] = req.ChatID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalError("Failed to encode search request", err)
	}

	var cacheKey string
	if s.cache != nil && req.ChatID == "" {
		cacheKey = s.cache.KeyBuilder.KeyChatCache(hashPayload(body))
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var resp domain.ChatResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				s.logger.WithField("query", req.Query).Debug("Yelp chat cache hit")
				return &resp, nil
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternalError("Failed to build search request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	s.logger.WithField("query", req.Query).Debug("Sending Yelp AI chat request")

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.WithError(err).Error("Failed to reach Yelp API")
		return nil, errors.NewExternalError("Failed to connect to Yelp API", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.NewExternalError("Failed to read Yelp API response", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		s.logger.WithFields(map[string]interface{}{
			"status": httpResp.StatusCode,
			"body":   truncate(string(respBody), 512),
		}).Error("Yelp API returned an error")
		return nil, errors.NewExternalError(fmt.Sprintf("Yelp API error: %d", httpResp.StatusCode), nil)
	}

	var raw chatAPIResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, errors.NewExternalError("Malformed Yelp API response", err)
	}

	resp := &domain.ChatResponse{
		ResponseText: raw.Response.Text,
		ChatID:       raw.ChatID,
		Businesses:   s.extractBusinesses(raw.Entities),
		Types:        raw.Types,
	}

	s.logger.WithFields(map[string]interface{}{
		"query":      req.Query,
		"businesses": len(resp.Businesses),
	}).Info("Yelp chat completed")

	if cacheKey != "" {
		if data, err := json.Marshal(resp); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, redis.TTLChatCache)
		}
	}

	return resp, nil
}

// SearchBusinesses runs a one-shot chat and returns only the businesses
func (s *Service) SearchBusinesses(ctx context.Context, query string, latitude, longitude *float64, locale string) ([]domain.Business, error) {
	resp, err := s.Chat(ctx, &domain.ChatRequest{
		Query: query,
		UserContext: &domain.UserContext{
			Locale:    locale,
			Latitude:  latitude,
			Longitude: longitude,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.Businesses, nil
}

type chatAPIResponse struct {
	ChatID   string `json:"chat_id"`
	Response struct {
		Text string `json:"text"`
	} `json:"response"`
	Types    []string        `json:"types"`
	Entities json.RawMessage `json:"entities"`
}

// extractBusinesses handles both entity layouts the API has shipped: a
// list of entities that either hold a nested businesses array or are
// businesses themselves, and the legacy map keyed by entity id.
func (s *Service) extractBusinesses(entities json.RawMessage) []domain.Business {
	businesses := []domain.Business{}
	if len(entities) == 0 {
		return businesses
	}

	var list []json.RawMessage
	if err := json.Unmarshal(entities, &list); err == nil {
		for _, entity := range list {
			var probe map[string]json.RawMessage
			if err := json.Unmarshal(entity, &probe); err != nil {
				continue
			}
			if nested, ok := probe["businesses"]; ok {
				var items []json.RawMessage
				if err := json.Unmarshal(nested, &items); err != nil {
					continue
				}
				for _, item := range items {
					if b, ok := s.parseBusiness(item); ok {
						businesses = append(businesses, b)
					}
				}
			} else if _, ok := probe["name"]; ok {
				if b, ok := s.parseBusiness(entity); ok {
					businesses = append(businesses, b)
				}
			}
		}
		return businesses
	}

	var legacy map[string]json.RawMessage
	if err := json.Unmarshal(entities, &legacy); err == nil {
		for _, entity := range legacy {
			if b, ok := s.parseBusiness(entity); ok {
				businesses = append(businesses, b)
			}
		}
		return businesses
	}

	s.logger.Warn("Unexpected Yelp entities format")
	return businesses
}

type businessEntity struct {
	ID             string     `json:"id"`
	Alias          string     `json:"alias"`
	Name           string     `json:"name"`
	Rating         float64    `json:"rating"`
	ReviewCount    int        `json:"review_count"`
	Price          string     `json:"price"`
	Distance       float64    `json:"distance"`
	ImageURL       string     `json:"image_url"`
	Photos         []photoRef `json:"photos"`
	ContextualInfo struct {
		Photos []photoRef `json:"photos"`
	} `json:"contextual_info"`
	Coordinates *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Location *struct {
		Address1         string   `json:"address1"`
		City             string   `json:"city"`
		DisplayAddress   []string `json:"display_address"`
		FormattedAddress string   `json:"formatted_address"`
	} `json:"location"`
	Phone      string `json:"phone"`
	URL        string `json:"url"`
	Categories []struct {
		Alias string `json:"alias"`
		Title string `json:"title"`
	} `json:"categories"`
}

// photoRef accepts both a bare URL string and the {original_url: ...}
// object form.
type photoRef struct {
	URL string
}

func (p *photoRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.URL = s
		return nil
	}
	var obj struct {
		OriginalURL string `json:"original_url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.URL = obj.OriginalURL
	return nil
}

func (s *Service) parseBusiness(raw json.RawMessage) (domain.Business, bool) {
	var e businessEntity
	if err := json.Unmarshal(raw, &e); err != nil || e.Name == "" {
		if err != nil {
			s.logger.WithError(err).Warn("Failed to parse business entity")
		}
		return domain.Business{}, false
	}

	id := e.ID
	if id == "" {
		id = e.Alias
	}
	if id == "" {
		id = hashName(e.Name)
	}

	tags := make([]string, 0, len(e.Categories))
	for _, cat := range e.Categories {
		if cat.Title != "" {
			tags = append(tags, cat.Title)
		}
	}

	image := e.ImageURL
	if image == "" && len(e.ContextualInfo.Photos) > 0 {
		image = e.ContextualInfo.Photos[0].URL
	}
	if image == "" && len(e.Photos) > 0 {
		image = e.Photos[0].URL
	}

	var distance string
	if e.Distance > 0 {
		distance = fmt.Sprintf("%.1f mi", e.Distance*0.000621371)
	}

	var coords *domain.Coordinates
	if e.Coordinates != nil {
		coords = &domain.Coordinates{
			Latitude:  e.Coordinates.Latitude,
			Longitude: e.Coordinates.Longitude,
		}
	}

	var address string
	if loc := e.Location; loc != nil {
		switch {
		case loc.FormattedAddress != "":
			address = loc.FormattedAddress
		case len(loc.DisplayAddress) > 0:
			address = strings.Join(loc.DisplayAddress, ", ")
		case loc.Address1 != "":
			address = loc.Address1
			if loc.City != "" {
				address += ", " + loc.City
			}
		}
	}

	return domain.Business{
		ID:          id,
		Name:        e.Name,
		Rating:      e.Rating,
		Reviews:     e.ReviewCount,
		Price:       e.Price,
		Distance:    distance,
		Image:       image,
		Tags:        tags,
		Votes:       0,
		Coordinates: coords,
		Address:     address,
		Phone:       e.Phone,
		URL:         e.URL,
	}, true
}

func hashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:16])
}

func hashName(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	return fmt.Sprintf("gen-%x", h.Sum64())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
