package swatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "swatches:100:50", CacheKey(100, 50))
	assert.Equal(t, "prod:swatches:0:100", EntryKey("prod", 0, 100))
	assert.Equal(t, "prod:swatch_index", IndexKey("prod"))
	assert.Equal(t, "prod:swatch_events", EventsChannel("prod"))
}

func TestEncodeCollection(t *testing.T) {
	t.Run("nil encodes as empty array", func(t *testing.T) {
		data, err := EncodeCollection(nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("uses lowercase field names", func(t *testing.T) {
		data, err := EncodeCollection(Collection{{Hue: 0, Name: "Red", Hex: "#FF0000", RGB: RGB{R: 255}}})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"hue":0,"name":"Red","hex":"#FF0000","rgb":{"r":255,"g":0,"b":0}}]`, string(data))
	})
}

func TestDecodeCollection(t *testing.T) {
	t.Run("decodes stored entry", func(t *testing.T) {
		c, err := DecodeCollection([]byte(`[{"hue":0,"name":"Red","hex":"#FF0000","rgb":{"r":255,"g":0,"b":0}},{"hue":120,"name":"Green","hex":"#00FF00","rgb":{"r":0,"g":255,"b":0}}]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"Red", "Green"}, c.Names())
	})

	t.Run("null decodes as empty", func(t *testing.T) {
		c, err := DecodeCollection([]byte(`null`))
		require.NoError(t, err)
		assert.NotNil(t, c)
		assert.Empty(t, c)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := DecodeCollection([]byte(`{not json`))
		assert.ErrorContains(t, err, "failed to unmarshal collection")
	})

	t.Run("rejects invalid point", func(t *testing.T) {
		_, err := DecodeCollection([]byte(`[{"hue":400,"name":"Red"}]`))
		assert.ErrorContains(t, err, "invalid point at index 0")
	})

	t.Run("rejects unsorted entry", func(t *testing.T) {
		_, err := DecodeCollection([]byte(`[{"hue":200,"name":"Blue"},{"hue":10,"name":"Red"}]`))
		assert.ErrorContains(t, err, "not sorted")
	})
}
