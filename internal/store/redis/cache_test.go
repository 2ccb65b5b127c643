package redis_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	redisstore "github.com/visitlens/visitlens/internal/store/redis"
)

func TestStateKey(t *testing.T) {
	t.Parallel()

	sessionID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.StateKey(sessionID)
		assert.Equal(t, "session:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		assert.True(t, strings.HasPrefix(redisstore.StateKey(sessionID), "session:"))
	})

	t.Run("different ids differ", func(t *testing.T) {
		t.Parallel()

		other := uuid.New()
		assert.NotEqual(t, redisstore.StateKey(sessionID), redisstore.StateKey(other))
	})
}

func TestPageKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "page:https://example.com", redisstore.PageKey("https://example.com"))
	assert.NotEqual(t, redisstore.PageKey("https://a.com"), redisstore.PageKey("https://b.com"))
}

func TestClassificationKey(t *testing.T) {
	t.Parallel()

	sessionID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	got := redisstore.ClassificationKey(sessionID)
	assert.Equal(t, "classification:11111111-2222-3333-4444-555555555555", got)
}
