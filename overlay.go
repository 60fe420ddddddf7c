package softrender

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawStatsOverlay draws the frame stats HUD into the framebuffer's
// top-left corner. Runs after compositing on the orchestrating
// goroutine, so it needs no synchronization.
func DrawStatsOverlay(fb *Framebuffer, s FrameStatsSnapshot) {
	lines := []string{
		fmt.Sprintf("frame %.2fms", float64(s.FrameTime.Microseconds())/1000),
		fmt.Sprintf("visible %d  emitted %d", s.MeshletsVisible, s.PrimitivesEmitted),
		fmt.Sprintf("binned %d  dropped %d", s.PrimitivesBinned, s.PrimitivesDropped),
	}
	d := &font.Drawer{
		Dst:  fb.Image(),
		Src:  image.NewUniform(color.RGBA{R: 255, G: 220, B: 80, A: 255}),
		Face: basicfont.Face7x13,
	}
	y := 16
	for _, line := range lines {
		if y >= fb.H {
			break
		}
		d.Dot = fixed.P(6, y)
		d.DrawString(line)
		y += 14
	}
}
