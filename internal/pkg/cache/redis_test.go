package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey_Namespaced(t *testing.T) {
	c := NewRedisCache("localhost:0", "shop-api")
	defer c.Close()

	assert.Equal(t, "shop-api:place_order:sess:key-1", c.GenerateKey("place_order", "sess:key-1"))
}
