package media_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
)

func onePixelPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestStore_Load_CachesByHash(t *testing.T) {
	var fetches int32
	data := onePixelPNG()
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		return data, nil
	})
	store := media.NewStore(fetcher, pipelog.Nop())

	id1, err := store.Load("http://example.com/a.png")
	require.NoError(t, err)
	id2, err := store.Load("http://example.com/a.png")
	require.NoError(t, err)

	require.Equal(t, id1, id2)
	require.EqualValues(t, 1, atomic.LoadInt32(&fetches), "second load must not refetch")
}

func TestStore_Load_FetchFailureReturnsPlaceholder(t *testing.T) {
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) {
		return nil, errors.New("404")
	})
	store := media.NewStore(fetcher, pipelog.Nop())

	id, err := store.Load("http://example.com/missing.png")
	require.NoError(t, err)
	require.Equal(t, media.DefaultImageID, id)
}

func TestStore_Load_SvgFetchFailureReturnsSvgPlaceholder(t *testing.T) {
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) {
		return nil, errors.New("404")
	})
	store := media.NewStore(fetcher, pipelog.Nop())

	id, err := store.Load("http://example.com/missing.svg")
	require.NoError(t, err)
	require.Equal(t, media.DefaultSvgID, id)
}

func TestStore_Load_DecodesPNGAndReportsIntrinsicSize(t *testing.T) {
	data := onePixelPNG()
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return data, nil })
	store := media.NewStore(fetcher, pipelog.Nop())

	id, err := store.Load("http://example.com/a.png")
	require.NoError(t, err)

	m := store.Get(id, media.KindImage)
	require.Equal(t, media.KindImage, m.Kind)
	w, h := m.IntrinsicSize()
	require.Equal(t, 1, w)
	require.Equal(t, 1, h)
}

func TestStore_LoadFromData_KeepsSvgDataForSvgKind(t *testing.T) {
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, errors.New("unused") })
	store := media.NewStore(fetcher, pipelog.Nop())

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"></svg>`)
	id, err := store.LoadFromData(media.KindSvg, svg)
	require.NoError(t, err)

	m := store.Get(id, media.KindSvg)
	require.Equal(t, media.KindSvg, m.Kind)
	require.Equal(t, svg, m.SvgData)
}

func TestStore_Get_UnknownIdReturnsPlaceholderOfExpectedKind(t *testing.T) {
	store := media.NewStore(media.HTTPFetcher, pipelog.Nop())

	m := store.Get(media.Id(999), media.KindSvg)
	require.Equal(t, media.KindSvg, m.Kind)

	m2 := store.Get(media.Id(999), media.KindImage)
	require.Equal(t, media.KindImage, m2.Kind)
}

func TestResolveURL(t *testing.T) {
	require.Equal(t, "http://x.y/a.png", media.ResolveURL("http://x.y/", "a.png"))
	require.Equal(t, "http://x.y/a.png", media.ResolveURL("http://x.y", "/a.png"))
	require.Equal(t, "https://elsewhere.com/b.png", media.ResolveURL("http://x.y/", "https://elsewhere.com/b.png"))
}
