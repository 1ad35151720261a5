package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticHeaderProvider(t *testing.T) {
	t.Parallel()

	source := map[string]string{
		"User-Agent": "QobuzGrabber/1.0.0",
		"X-App-Id":   "123456789",
	}

	provider := NewStaticHeaderProvider(source)
	assert.Equal(t, source, provider.Headers())

	source["X-App-Id"] = "changed"
	assert.Equal(t, "123456789", provider.Headers()["X-App-Id"], "Provider must not share the caller's map")

	returned := provider.Headers()
	returned["User-Agent"] = "mutated"
	assert.Equal(t, "QobuzGrabber/1.0.0", provider.Headers()["User-Agent"], "Callers must get a copy")
}

func TestStaticHeaderProvider_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewStaticHeaderProvider(nil).Headers())
}
