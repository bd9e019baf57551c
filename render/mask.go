package render

import (
	"image"
	"image/color"
	"image/draw"
)

// circle is an alpha mask revealing disc of radius r around p.
type circle struct {
	p image.Point
	r int
}

func (c *circle) ColorModel() color.Model { return color.AlphaModel }

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.p.X-c.r, c.p.Y-c.r, c.p.X+c.r, c.p.Y+c.r)
}

func (c *circle) At(x, y int) color.Color {
	xx, yy, rr := float64(x-c.p.X)+0.5, float64(y-c.p.Y)+0.5, float64(c.r)
	if xx*xx+yy*yy < rr*rr {
		return color.Alpha{A: 255}
	}
	return color.Alpha{A: 0}
}

// reveal returns copy of src showing only centered disc with radius
// fraction of image height.
func reveal(src *image.NRGBA, fraction float64) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	r := int(fraction * float64(b.Dy()))
	if r <= 0 {
		return dst
	}
	center := image.Pt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
	draw.DrawMask(dst, b, src, b.Min, &circle{p: center, r: r}, b.Min, draw.Over)
	return dst
}
