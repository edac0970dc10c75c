package container

import (
	"context"

	"consensus-be/internal/config"
	"consensus-be/internal/service"
	"consensus-be/internal/service/calendar"
	"consensus-be/internal/service/gemini"
	"consensus-be/internal/service/yelp"
	"consensus-be/pkg/logger"
	"consensus-be/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Services    *service.Services
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	yelpService := yelp.NewService(cfg.YelpAPIKey, cfg.YelpAPIBaseURL, redisClient, log)

	var geminiService service.GeminiService
	if cfg.GeminiAPIKey != "" {
		svc, err := gemini.NewService(ctx, cfg.GeminiAPIKey, log)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Gemini client, multimodal endpoints disabled")
		} else {
			geminiService = svc
		}
	} else {
		log.Info("Gemini API key not configured, multimodal endpoints disabled")
	}

	calendarService := calendar.NewService(
		cfg.GoogleCalendarClientID,
		cfg.GoogleCalendarClientSecret,
		cfg.GoogleOAuthRedirectURI,
		log,
	)

	services := &service.Services{
		Yelp:     yelpService,
		Gemini:   geminiService,
		Calendar: calendarService,
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		RedisClient: redisClient,
		Services:    services,
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// GetYelpService returns the business search service
func (c *Container) GetYelpService() service.YelpService {
	return c.Services.Yelp
}

// GetGeminiService returns the multimodal service (may be nil)
func (c *Container) GetGeminiService() service.GeminiService {
	return c.Services.Gemini
}

// GetCalendarService returns the calendar service
func (c *Container) GetCalendarService() service.CalendarService {
	return c.Services.Calendar
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
