package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	base := NewTestLogger(t)

	t.Run("returns stored logger", func(t *testing.T) {
		scoped := base.WithFields(map[string]interface{}{"request_id": "abc"})
		ctx := WithContext(context.Background(), scoped)
		assert.Same(t, scoped, FromContext(ctx, base))
	})

	t.Run("falls back when absent", func(t *testing.T) {
		assert.Same(t, base, FromContext(context.Background(), base))
	})

	t.Run("never returns nil", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background(), nil))
	})
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	l := New("chatty", "json")
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(0))
}
