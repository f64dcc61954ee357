// Package media is the content-addressed image/SVG cache the layouter
// and rasterizer both read from (spec §4.8). It owns decoding and
// network/file fetch — the one component in the pipeline allowed to
// block on I/O (spec §5).
package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
)

// Id is an opaque handle into a MediaStore.
type Id uint64

// DefaultImageID and DefaultSvgID are the two reserved placeholder ids
// substituted on fetch/decode failure (§4.8). They never appear as a
// value in the hash→id cache.
const (
	DefaultImageID Id = 1
	DefaultSvgID   Id = 2
)

const firstAllocatedID = 3

// Kind tags which variant of Media is populated.
type Kind int

const (
	KindImage Kind = iota
	KindSvg
)

// Media is one cache entry: a decoded raster image, or raw SVG bytes
// plus a small cache of pixmaps already rasterized at a given size
// (the rasterizer keys into this by dimension, §4.7 step on Svg).
type Media struct {
	Kind Kind

	Image image.Image // set when Kind == KindImage

	SvgData []byte // set when Kind == KindSvg

	mu         sync.Mutex
	svgPixmaps map[[2]int]image.Image
}

// IntrinsicSize returns the media's natural pixel dimensions. SVGs
// without a decoded pixmap yet report (0, 0) — per §4.3, layout
// constraints drive their final size instead of an intrinsic one.
func (m *Media) IntrinsicSize() (w, h int) {
	if m.Kind == KindImage && m.Image != nil {
		b := m.Image.Bounds()
		return b.Dx(), b.Dy()
	}
	return 0, 0
}

// CachedSvgPixmap returns a previously rasterized pixmap for (w,h), if any.
func (m *Media) CachedSvgPixmap(w, h int) (image.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.svgPixmaps[[2]int{w, h}]
	return img, ok
}

// StoreSvgPixmap caches a rasterized pixmap for (w,h).
func (m *Media) StoreSvgPixmap(w, h int, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.svgPixmaps == nil {
		m.svgPixmaps = make(map[[2]int]image.Image)
	}
	m.svgPixmaps[[2]int{w, h}] = img
}

// RasterizedSvg returns the pixmap for this SVG at w×h, rasterizing and
// caching it on first use (§4.7: "cached in the media entry keyed by
// rendered dimension"). Only valid for Kind == KindSvg.
func (m *Media) RasterizedSvg(w, h int) (image.Image, error) {
	if img, ok := m.CachedSvgPixmap(w, h); ok {
		return img, nil
	}
	img, err := RasterizeSvg(m.SvgData, w, h)
	if err != nil {
		return nil, err
	}
	m.StoreSvgPixmap(w, h, img)
	return img, nil
}

// Resized returns img scaled to (w,h) via Lanczos resampling. Used by
// the rasterizer when an Image command's rect doesn't match the
// media's intrinsic size.
func Resized(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Store is the shared, content-addressed media cache (spec §4.8 and
// §9: "isolated behind init_once + readers/writer lock singletons").
// There is no package-level Store: callers, tests included, construct
// one and pass it where it is needed.
type Store struct {
	mu           sync.RWMutex
	entries      map[Id]*Media
	byHash       map[string]Id
	failedHashes map[string]Id // srcs that resolved to a placeholder; kept separate from byHash per §4.8
	next         uint64

	Fetcher Fetcher
	Log     *pipelog.Logger
}

// NewStore builds an empty store seeded with the two placeholder ids.
func NewStore(fetcher Fetcher, log *pipelog.Logger) *Store {
	s := &Store{
		entries:      make(map[Id]*Media),
		byHash:       make(map[string]Id),
		failedHashes: make(map[string]Id),
		next:         firstAllocatedID,
		Fetcher:      fetcher,
		Log:          log,
	}
	s.entries[DefaultImageID] = &Media{Kind: KindImage, Image: placeholderImage()}
	s.entries[DefaultSvgID] = &Media{Kind: KindSvg, SvgData: placeholderSvg}
	return s
}

func hashOf(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Load fetches and decodes the media at src, or returns the cached id
// for a previously seen src. A fetch or decode failure caches the
// placeholder of the guessed kind so repeat loads stay O(1) (§4.8 step 2).
func (s *Store) Load(src string) (Id, error) {
	hash := hashOf([]byte(src))

	s.mu.RLock()
	if id, ok := s.byHash[hash]; ok {
		s.mu.RUnlock()
		return id, nil
	}
	if id, ok := s.failedHashes[hash]; ok {
		s.mu.RUnlock()
		return id, nil
	}
	s.mu.RUnlock()

	data, err := s.Fetcher.Fetch(src)
	if err != nil {
		s.Log.Warn("media fetch failed, using placeholder", "src", src, "err", err)
		return s.cachePlaceholder(hash, guessKindFromSrc(src)), nil
	}
	return s.loadFromBytesHashed(hash, data)
}

// LoadFromData registers raw bytes directly (e.g. an inline <svg>'s
// serialized content, §4.3) under a content hash rather than a URL hash.
func (s *Store) LoadFromData(kind Kind, data []byte) (Id, error) {
	hash := hashOf(data)
	s.mu.RLock()
	if id, ok := s.byHash[hash]; ok {
		s.mu.RUnlock()
		return id, nil
	}
	s.mu.RUnlock()
	return s.decodeAndInsert(hash, kind, data)
}

func (s *Store) loadFromBytesHashed(hash string, data []byte) (Id, error) {
	kind := sniffKind(data)
	return s.decodeAndInsert(hash, kind, data)
}

func (s *Store) decodeAndInsert(hash string, kind Kind, data []byte) (Id, error) {
	var m *Media
	switch kind {
	case KindSvg:
		m = &Media{Kind: KindSvg, SvgData: data}
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			s.Log.Warn("media decode failed, using placeholder", "err", err)
			return s.cachePlaceholder(hash, KindImage), nil
		}
		m = &Media{Kind: KindImage, Image: img}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byHash[hash]; ok {
		return id, nil // lost a race with a concurrent Load of the same src
	}
	id := Id(s.next)
	s.next++
	s.entries[id] = m
	s.byHash[hash] = id
	return id, nil
}

func (s *Store) cachePlaceholder(hash string, kind Kind) Id {
	id := DefaultImageID
	if kind == KindSvg {
		id = DefaultSvgID
	}
	s.mu.Lock()
	// Placeholder ids are never written into byHash (§4.8 invariant) —
	// but we still want repeat loads of the same failing src to short
	// circuit the fetch, so track it separately.
	s.failedHashes[hash] = id
	s.mu.Unlock()
	return id
}

// Get returns the entry for id, or the default placeholder of the
// expected kind if id is unknown (§4.8 step 5).
func (s *Store) Get(id Id, expected Kind) *Media {
	s.mu.RLock()
	m, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return m
	}
	if expected == KindSvg {
		return s.entries[DefaultSvgID]
	}
	return s.entries[DefaultImageID]
}

func guessKindFromSrc(src string) Kind {
	if len(src) >= 4 && src[len(src)-4:] == ".svg" {
		return KindSvg
	}
	return KindImage
}

func sniffKind(data []byte) Kind {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return KindSvg
	}
	return KindImage
}

// placeholderColor is a light gray, matching the common "broken image"
// convention without depending on any particular UI theme.
var placeholderColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

func placeholderImage() image.Image {
	return imaging.New(1, 1, placeholderColor)
}

var placeholderSvg = []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1 1"></svg>`)
