// Package export writes a board's strokes to PDF, PNG or a text summary.
package export

import (
	"fmt"
	"io"

	"sketchive/internal/render"
	"sketchive/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// Size is the surface the strokes were drawn on, in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) valid() bool { return s.Width > 0 && s.Height > 0 }

// PDF writes one page sized to the surface, one point per pixel, with every
// stroke drawn as connected segments in store order.
func PDF(w io.Writer, strokes []state.Stroke, size Size) error {
	if !size.valid() {
		return fmt.Errorf("%w: %dx%d", render.ErrInvalidSize, size.Width, size.Height)
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(size.Width), Ht: float64(size.Height)},
	})
	p.SetCreator("sketchive", true)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for _, st := range strokes {
		c, _ := render.ParseColor(st.Color)
		r, g, b := int(c.R*255), int(c.G*255), int(c.B*255)
		p.SetAlpha(c.A, "Normal")

		switch len(st.Path) {
		case 0:
			continue
		case 1:
			p.SetFillColor(r, g, b)
			p.Circle(st.Path[0].X, st.Path[0].Y, st.Width/2, "F")
			continue
		}

		p.SetDrawColor(r, g, b)
		p.SetLineWidth(st.Width)
		p.MoveTo(st.Path[0].X, st.Path[0].Y)
		for _, pt := range st.Path[1:] {
			p.LineTo(pt.X, pt.Y)
		}
		p.DrawPath("D")
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
