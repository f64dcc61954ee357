package texture_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/texture"
)

func TestStore_AddAndGet(t *testing.T) {
	s := texture.NewStore()
	id := s.Add(&texture.Texture{Width: 4, Height: 4, Pix: make([]byte, 4*4*4)})

	tex, ok := s.Get(id)
	require.True(t, ok)
	require.Equal(t, 4, tex.Width)
}

func TestStore_ReplaceKeepsSameId(t *testing.T) {
	s := texture.NewStore()
	id := s.Add(&texture.Texture{Width: 2, Height: 2, Pix: make([]byte, 2*2*4)})
	s.Replace(id, &texture.Texture{Width: 8, Height: 8, Pix: make([]byte, 8*8*4)})

	tex, ok := s.Get(id)
	require.True(t, ok)
	require.Equal(t, 8, tex.Width)
}

func TestStore_RemoveEvicts(t *testing.T) {
	s := texture.NewStore()
	id := s.Add(&texture.Texture{Width: 1, Height: 1, Pix: make([]byte, 4)})
	s.Remove(id)

	_, ok := s.Get(id)
	require.False(t, ok)
}
