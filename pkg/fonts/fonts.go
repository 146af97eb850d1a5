// Package fonts loads font faces and rasterizes words into glyph masks.
//
// The Go font family is embedded through golang.org/x/image/font/gofont, so
// a layout can be computed without any font files installed. Other
// TrueType or OpenType files can be loaded by path.
//
// Two engines are available. [EngineOpenType] (the default) uses
// golang.org/x/image/font/opentype; [EngineFreeType] uses
// github.com/golang/freetype/truetype. Both produce a font.Face drawn with
// font.Drawer, so masks from either engine have the same geometry rules.
package fonts

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	errs "github.com/matzehuels/wordcloud/pkg/errors"
)

// Engine selects the font rasterization library.
type Engine string

const (
	EngineOpenType Engine = "opentype"
	EngineFreeType Engine = "freetype"
)

// Built-in font names.
const (
	Regular = "goregular"
	Bold    = "gobold"
	Mono    = "gomono"
)

// DefaultFont is used when no font is configured.
const DefaultFont = Bold

var builtin = map[string]struct {
	family string
	data   []byte
}{
	Regular: {"Go", goregular.TTF},
	Bold:    {"Go", gobold.TTF},
	Mono:    {"Go Mono", gomono.TTF},
}

// Names lists the built-in font names.
func Names() []string { return []string{Regular, Bold, Mono} }

// Font is a parsed font with a per-size face cache. It is safe for
// concurrent use.
type Font struct {
	name   string
	family string
	bold   bool
	engine Engine
	data   []byte

	ot *sfnt.Font
	tt *truetype.Font

	mu    sync.Mutex
	buf   sfnt.Buffer
	faces map[float64]font.Face

	b64Once sync.Once
	b64     string
}

// Load returns a built-in font by name, or reads a TTF/OTF file when name
// is a path. An empty name loads [DefaultFont]; an empty engine selects
// [EngineOpenType].
func Load(name string, engine Engine) (*Font, error) {
	if name == "" {
		name = DefaultFont
	}
	if b, ok := builtin[name]; ok {
		return Parse(name, b.family, b.data, engine)
	}
	if err := errs.ValidatePath(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "font %s", name)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read font %s", name)
	}
	family := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return Parse(name, family, data, engine)
}

// Parse builds a Font from raw TTF/OTF data.
func Parse(name, family string, data []byte, engine Engine) (*Font, error) {
	f := &Font{
		name:   name,
		family: family,
		bold:   name == Bold,
		engine: engine,
		data:   data,
		faces:  make(map[float64]font.Face),
	}
	switch engine {
	case "", EngineOpenType:
		f.engine = EngineOpenType
		ot, err := opentype.Parse(data)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse font %s", name)
		}
		f.ot = ot
	case EngineFreeType:
		tt, err := truetype.Parse(data)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse font %s", name)
		}
		f.tt = tt
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown font engine %q (want opentype or freetype)", engine)
	}
	return f, nil
}

// Name returns the name the font was loaded with.
func (f *Font) Name() string { return f.name }

// Family returns the CSS font-family name.
func (f *Font) Family() string { return f.family }

// Bold reports whether the face should be declared bold in CSS.
func (f *Font) Bold() bool { return f.bold }

// Engine returns the rasterization engine in use.
func (f *Font) Engine() Engine { return f.engine }

// Base64 returns the raw font data base64-encoded, for embedding in SVG.
// The result is computed once.
func (f *Font) Base64() string {
	f.b64Once.Do(func() {
		f.b64 = base64.StdEncoding.EncodeToString(f.data)
	})
	return f.b64
}

// has reports whether the font maps r to a real glyph. Callers hold mu.
func (f *Font) has(r rune) bool {
	if f.tt != nil {
		return f.tt.Index(r) != 0
	}
	i, err := f.ot.GlyphIndex(&f.buf, r)
	return err == nil && i != 0
}

// face returns the cached face at size. Callers hold mu.
func (f *Font) face(size float64) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	var face font.Face
	if f.tt != nil {
		face = truetype.NewFace(f.tt, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	} else {
		var err error
		face, err = opentype.NewFace(f.ot, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeGlyphRender, err, "font %s at size %.1f", f.name, size)
		}
	}
	f.faces[size] = face
	return face, nil
}
