package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilderPrefix(t *testing.T) {
	assert.Equal(t, "development", NewKeyBuilder("development").GetPrefix())
	assert.Equal(t, "staging", NewKeyBuilder("staging").GetPrefix())
	assert.Equal(t, "test", NewKeyBuilder("test").GetPrefix())
	assert.Equal(t, "prod", NewKeyBuilder("production").GetPrefix())
	assert.Equal(t, "prod", NewKeyBuilder("").GetPrefix())
}

func TestKeyBuilderKeys(t *testing.T) {
	kb := NewKeyBuilder("test")

	assert.Equal(t, "test:polls:document", kb.KeyPollsDocument())
	assert.Equal(t, "test:yelp:chat:abc123", kb.KeyChatCache("abc123"))
	assert.Equal(t, "test:calendar:oauth:state:st", kb.KeyOAuthState("st"))
	assert.Equal(t, "test:custom:42", kb.KeyCustom("custom:%d", 42))
}
