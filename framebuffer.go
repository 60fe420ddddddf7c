package softrender

import (
	"fmt"
	"image"
)

// Framebuffer is the shared output surface: packed RGBA8 pixels,
// row-major, Stride bytes per row. This layout is the whole contract
// with the presentation layer; pixel format negotiation is the
// presenter's problem.
type Framebuffer struct {
	W      int
	H      int
	Stride int
	Pix    []uint8
}

func NewFramebuffer(w, h int) (*Framebuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("framebuffer: invalid size %dx%d", w, h)
	}
	return &Framebuffer{
		W:      w,
		H:      h,
		Stride: w * 4,
		Pix:    make([]uint8, w*h*4),
	}, nil
}

func (f *Framebuffer) Clear(c Color) {
	r, g, b, a := c.R(), c.G(), c.B(), c.A()
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
		f.Pix[i+3] = a
	}
}

func (f *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	i := y*f.Stride + x*4
	f.Pix[i] = c.R()
	f.Pix[i+1] = c.G()
	f.Pix[i+2] = c.B()
	f.Pix[i+3] = c.A()
}

func (f *Framebuffer) At(x, y int) Color {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return 0
	}
	i := y*f.Stride + x*4
	return RGBA(f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3])
}

// Image wraps the pixel buffer as an *image.RGBA without copying.
// Mutating the returned image mutates the framebuffer.
func (f *Framebuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   image.Rect(0, 0, f.W, f.H),
	}
}
