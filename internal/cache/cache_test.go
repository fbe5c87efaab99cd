package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestKey(t *testing.T) {
	assert.Equal(t, "user:7", Key("user", 7))
	assert.Equal(t, "comment:12", Key("comment", 12))
}

func TestNilClientIsEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Ping(ctx))
	c.Set(ctx, "k", []byte("v"))
	assert.Nil(t, c.Get(ctx, "k"))
	c.Delete(ctx, "k")
	assert.NoError(t, c.Close())

	SetJSON(ctx, c, "k", entry{ID: 1})
	got, ok := GetJSON[entry](ctx, c, "k")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	c := New("127.0.0.1:1", "", 0, time.Minute)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	c.Set(ctx, "k", []byte("v"))
	assert.Nil(t, c.Get(ctx, "k"))
	c.Delete(ctx, "k")
}
