package redis

import "fmt"

// Key patterns
const (
	// KeyPollsDocument is the single fixed key holding the whole poll
	// collection as one JSON document.
	KeyPollsDocument = "polls:document"

	KeyChatCache  = "yelp:chat:%s"            // keyed by payload hash
	KeyOAuthState = "calendar:oauth:state:%s" // CSRF state for the OAuth handshake
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = environment
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyPollsDocument() string {
	return kb.BuildKey(KeyPollsDocument)
}

func (kb *KeyBuilder) KeyChatCache(payloadHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyChatCache, payloadHash))
}

func (kb *KeyBuilder) KeyOAuthState(state string) string {
	return kb.BuildKey(fmt.Sprintf(KeyOAuthState, state))
}

// KeyCustom builds an arbitrary prefixed key
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
