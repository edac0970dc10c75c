package domain

// Business is an option under consideration in a poll, as returned by the
// upstream search provider. Votes is the denormalized tally, initialized
// to zero when a business is added to a poll.
type Business struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Rating      float64      `json:"rating,omitempty"`
	Reviews     int          `json:"reviews,omitempty"`
	Price       string       `json:"price,omitempty"`
	Distance    string       `json:"distance,omitempty"`
	Image       string       `json:"image,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Votes       int          `json:"votes"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Address     string       `json:"address,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	URL         string       `json:"url,omitempty"`
}

// UserContext carries locale and location hints for the search provider
type UserContext struct {
	Locale    string   `json:"locale,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ChatRequest is a query against the business search AI. ChatID carries
// the conversation forward across turns.
type ChatRequest struct {
	Query       string       `json:"query"`
	UserContext *UserContext `json:"user_context,omitempty"`
	ChatID      string       `json:"chat_id,omitempty"`
}

// ChatResponse is the AI answer plus the businesses extracted from it
type ChatResponse struct {
	ResponseText string     `json:"response_text"`
	ChatID       string     `json:"chat_id,omitempty"`
	Businesses   []Business `json:"businesses"`
	Types        []string   `json:"types,omitempty"`
}

// SearchRequest is the simplified one-shot search payload
type SearchRequest struct {
	Query     string   `json:"query"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Locale    string   `json:"locale,omitempty"`
}
