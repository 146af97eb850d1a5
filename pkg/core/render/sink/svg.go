package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/render/color"
)

// fallbackFamily is appended to the configured family so viewers without
// the font still render something close.
const fallbackFamily = `'Helvetica Neue', Arial, sans-serif`

// RenderSVG renders res as an SVG document with one text element per
// placed word.
//
// With a [Measurer] each word is positioned so that its ink box matches the
// layout box; without one, words are centred using text-anchor and
// dominant-baseline, which is close but font dependent.
func RenderSVG(res *layout.Result, opts ...Option) []byte {
	o := newOptions(opts...)
	colors := Colors(res, o.colorFn)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%.0f" height="%.0f">`+"\n",
		res.Width, res.Height, float64(res.Width)*o.scale, float64(res.Height)*o.scale)

	family := fallbackFamily
	weight := "normal"
	if o.font != nil {
		family = fmt.Sprintf("'%s', %s", o.font.Family(), fallbackFamily)
		if o.font.Bold() {
			weight = "bold"
		}
		if o.embedFont {
			fmt.Fprintf(&buf, "  <defs><style>@font-face { font-family: '%s'; font-weight: %s; src: url(data:font/ttf;base64,%s) format('truetype'); }</style></defs>\n",
				o.font.Family(), weight, o.font.Base64())
		}
	}

	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", color.Hex(o.background))
	fmt.Fprintf(&buf, `  <g font-family="%s" font-weight="%s">`+"\n", escapeXML(family), weight)
	for i, p := range res.Placed {
		renderWord(&buf, o, p, color.Hex(colors[i]))
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderWord(buf *bytes.Buffer, o options, p layout.PlacedWord, fill string) {
	cx := float64(p.X) + float64(p.Width)/2
	cy := float64(p.Y) + float64(p.Height)/2
	transform := ""
	if p.Rotation != 0 {
		transform = fmt.Sprintf(` transform="rotate(%g %.1f %.1f)"`, p.Rotation, cx, cy)
	}

	if o.measurer != nil {
		b := o.measurer.Bounds(p.Text, p.Size)
		x := cx - float64(b.Min.X+b.Max.X)/2
		y := cy - float64(b.Min.Y+b.Max.Y)/2
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s"%s>%s</text>`+"\n",
			x, y, p.Size, fill, transform, escapeXML(p.Text))
		return
	}
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central"%s>%s</text>`+"\n",
		cx, cy, p.Size, fill, transform, escapeXML(p.Text))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
