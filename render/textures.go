package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mobile/asset"
	"golang.org/x/mobile/exp/gl/glutil"
	"golang.org/x/mobile/exp/sprite"
	"golang.org/x/mobile/exp/sprite/glsprite"
	"golang.org/x/mobile/gl"
)

// Textures owns the sprite engine of one surface session and caches
// textures loaded from app assets by name.
type Textures struct {
	surface *GLSurface
	gen     int
	images  *glutil.Images
	engine  sprite.Engine
	cache   map[string]sprite.Texture

	open      func(name string) (image.Image, error)
	readFile  func(name string) ([]byte, error)
	newEngine func(glctx gl.Context) (sprite.Engine, *glutil.Images)
}

// NewTextures returns a texture manager drawing on surface. The engine is
// created lazily once a GL context is bound.
func NewTextures(surface *GLSurface) *Textures {
	return &Textures{
		surface: surface,
		cache:     make(map[string]sprite.Texture),
		open:      openAssetImage,
		readFile:  os.ReadFile,
		newEngine: newGLEngine,
	}
}

func newGLEngine(glctx gl.Context) (sprite.Engine, *glutil.Images) {
	images := glutil.NewImages(glctx)
	return glsprite.Engine(images), images
}

// Engine returns the sprite engine for the bound context, creating it if
// needed. It returns nil while no context is bound.
func (t *Textures) Engine() sprite.Engine {
	if t.engine != nil && t.gen != t.surface.Generation() {
		// The context these objects lived in is gone; drop them without
		// touching GL.
		log.WithField("generation", t.surface.Generation()).Debug("surface replaced, dropping sprite engine")
		t.engine = nil
		t.images = nil
		t.cache = make(map[string]sprite.Texture)
	}
	if t.engine == nil {
		glctx := t.surface.Context()
		if glctx == nil {
			return nil
		}
		t.engine, t.images = t.newEngine(glctx)
		t.gen = t.surface.Generation()
	}
	return t.engine
}

// Images returns the GL image factory backing the engine.
func (t *Textures) Images() *glutil.Images {
	if t.Engine() == nil {
		return nil
	}
	return t.images
}

// Open returns the texture for the named asset, loading it on first use.
func (t *Textures) Open(name string) (sprite.Texture, error) {
	eng := t.Engine()
	if eng == nil {
		return nil, errors.New("engine not loaded yet")
	}
	if tex, ok := t.cache[name]; ok {
		return tex, nil
	}
	img, err := t.open(name)
	if err != nil {
		return nil, err
	}
	tex, err := eng.LoadTexture(img)
	if err != nil {
		return nil, fmt.Errorf("can't load texture file: %v", err)
	}
	t.cache[name] = tex
	return tex, nil
}

// LoadTexture decodes data and uploads it as an uncached texture.
func (t *Textures) LoadTexture(data []byte) (sprite.Texture, error) {
	eng := t.Engine()
	if eng == nil {
		return nil, errors.New("engine not loaded yet")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("can't decode texture file: %v", err)
	}
	return t.LoadImage(img)
}

// OpenFile loads the image file at path, outside the app assets, as an
// uncached texture.
func (t *Textures) OpenFile(path string) (sprite.Texture, error) {
	data, err := t.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read texture file: %v", err)
	}
	return t.LoadTexture(data)
}

// LoadImage uploads img as an uncached texture.
func (t *Textures) LoadImage(img image.Image) (sprite.Texture, error) {
	eng := t.Engine()
	if eng == nil {
		return nil, errors.New("engine not loaded yet")
	}
	tex, err := eng.LoadTexture(img)
	if err != nil {
		return nil, fmt.Errorf("can't load texture file: %v", err)
	}
	return tex, nil
}

// live reports whether eng is the engine of the currently bound context.
func (t *Textures) live(eng sprite.Engine) bool {
	return eng != nil && eng == t.engine && t.gen == t.surface.Generation() && t.surface.Context() != nil
}

// Release frees the engine with every texture it loaded.
func (t *Textures) Release() {
	if t.live(t.engine) {
		t.engine.Release()
		if t.images != nil {
			t.images.Release()
		}
	}
	t.engine = nil
	t.images = nil
	t.cache = make(map[string]sprite.Texture)
}

func openAssetImage(name string) (image.Image, error) {
	a, err := asset.Open(name)
	if err != nil {
		return nil, fmt.Errorf("can't open texture file: %v", err)
	}
	defer a.Close()

	img, _, err := image.Decode(a)
	if err != nil {
		return nil, fmt.Errorf("can't decode texture file: %v", err)
	}
	return img, nil
}
