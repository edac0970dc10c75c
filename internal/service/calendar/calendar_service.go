package calendar

import (
	"context"
	"fmt"

	"consensus-be/internal/domain"
	"consensus-be/internal/service"
	"consensus-be/pkg/errors"
	"consensus-be/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultTimezone = "America/New_York"

var scopes = []string{"https://www.googleapis.com/auth/calendar.events"}

// Service implements the CalendarService interface over the Google
// Calendar API.
type Service struct {
	oauthConfig *oauth2.Config
	logger      *logger.Logger
}

// NewService creates a new calendar service
func NewService(clientID, clientSecret, redirectURI string, log *logger.Logger) service.CalendarService {
	return &Service{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		logger: log,
	}
}

// AuthorizationURL builds the consent URL. Offline access plus a forced
// consent prompt so a refresh token comes back.
func (s *Service) AuthorizationURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// ExchangeCode trades the callback code for tokens
func (s *Service) ExchangeCode(ctx context.Context, code string) (*domain.TokenBundle, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		s.logger.WithError(err).Error("OAuth code exchange failed")
		return nil, errors.NewExternalError("Failed to exchange authorization code", err)
	}

	bundle := &domain.TokenBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		bundle.Expiry = token.Expiry.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return bundle, nil
}

// CreateEvent inserts an event into the user's primary calendar. An API
// failure is reported in the response rather than as an error, callers
// surface it to the user directly.
func (s *Service) CreateEvent(ctx context.Context, accessToken, refreshToken string, details *domain.EventDetails) (*domain.CreateEventResponse, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	// TokenSource refreshes transparently when the access token has expired
	tokenSource := s.oauthConfig.TokenSource(ctx, token)

	svc, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		s.logger.WithError(err).Error("Failed to create Calendar service")
		return nil, errors.NewInternalError("Failed to initialize Calendar service", err)
	}

	timezone := details.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}

	event := &calendar.Event{
		Summary:     details.Title,
		Location:    details.Location,
		Description: details.Description,
		Start: &calendar.EventDateTime{
			DateTime: details.StartTime,
			TimeZone: timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: details.EndTime,
			TimeZone: timezone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	sendUpdates := "none"
	if len(details.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(details.Attendees))
		for _, email := range details.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
		sendUpdates = "all"
	}

	created, err := svc.Events.Insert("primary", event).SendUpdates(sendUpdates).Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok {
			s.logger.WithFields(map[string]interface{}{
				"status":  apiErr.Code,
				"message": apiErr.Message,
			}).Error("Calendar API error")
			return &domain.CreateEventResponse{
				Success: false,
				Error:   fmt.Sprintf("Failed to create calendar event: %s", apiErr.Message),
			}, nil
		}
		s.logger.WithError(err).Error("Unexpected error creating calendar event")
		return nil, errors.NewExternalError("Failed to create calendar event", err)
	}

	s.logger.WithField("event_id", created.Id).Info("Calendar event created")

	return &domain.CreateEventResponse{
		Success:   true,
		EventID:   created.Id,
		EventLink: created.HtmlLink,
		Message:   "Event added to calendar successfully",
	}, nil
}
