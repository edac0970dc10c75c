package domain

// EventDetails describes the calendar event created for a winning
// candidate. Start and end times are ISO-8601 strings in the given
// timezone.
type EventDetails struct {
	Title       string   `json:"title"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Timezone    string   `json:"timezone,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
}

// CreateEventRequest carries the user's OAuth tokens and the event to create
type CreateEventRequest struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	EventDetails *EventDetails `json:"event_details"`
}

// CreateEventResponse reports the outcome of an event insert
type CreateEventResponse struct {
	Success   bool   `json:"success"`
	EventID   string `json:"event_id,omitempty"`
	EventLink string `json:"event_link,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TokenBundle is the result of the OAuth code exchange, returned to the
// client to hold for later event creation.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Expiry       string `json:"expiry,omitempty"`
}

// AuthStartResponse hands the client the URL to begin the OAuth redirect
type AuthStartResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// AuthCallbackResponse completes the OAuth handshake
type AuthCallbackResponse struct {
	Success bool         `json:"success"`
	UserID  string       `json:"user_id"`
	Tokens  *TokenBundle `json:"tokens"`
}
