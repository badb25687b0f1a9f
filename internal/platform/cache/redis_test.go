package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), Options{Addr: mr.Addr(), DB: 2})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	mr.Select(2)
	assert.True(t, mr.Exists("k"))
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := New(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}

func TestNewRejectsWrongPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("right")
	_, err := New(context.Background(), Options{Addr: mr.Addr(), Password: "wrong"})
	assert.Error(t, err)

	client, err := New(context.Background(), Options{Addr: mr.Addr(), Password: "right"})
	require.NoError(t, err)
	_ = client.Close()
}
