package sink

import (
	"bytes"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/render"
)

// RenderJSON encodes the layout itself.
func RenderJSON(res *layout.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := res.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderPDF renders res as SVG and converts it with rsvg-convert. The font
// is always embedded so the converter does not need it installed.
func RenderPDF(res *layout.Result, opts ...Option) ([]byte, error) {
	svg := RenderSVG(res, append(opts, WithEmbeddedFont())...)
	return render.ToPDF(svg)
}
