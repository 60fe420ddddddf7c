package softrender

import "math"

// KernelKind selects a per-pixel post-process kernel. The set is closed
// and known at build time, so dispatch is a tag plus a function table
// rather than an interface.
type KernelKind uint8

const (
	KernelNone KernelKind = iota
	KernelGrayscale
	KernelInvert
	KernelTonemap

	kernelCount
)

type kernelFunc func(r, g, b uint8) (uint8, uint8, uint8)

var kernelTable = [kernelCount]kernelFunc{
	KernelNone:      nil,
	KernelGrayscale: grayscaleKernel,
	KernelInvert:    invertKernel,
	KernelTonemap:   tonemapKernel,
}

func grayscaleKernel(r, g, b uint8) (uint8, uint8, uint8) {
	// Rec. 601 luma weights.
	y := uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
	return y, y, y
}

func invertKernel(r, g, b uint8) (uint8, uint8, uint8) {
	return 255 - r, 255 - g, 255 - b
}

func tonemapKernel(r, g, b uint8) (uint8, uint8, uint8) {
	return tonemapChannel(r), tonemapChannel(g), tonemapChannel(b)
}

func tonemapChannel(v uint8) uint8 {
	// sqrt curve: lifts shadows, compresses highlights.
	return uint8(255 * math.Sqrt(float64(v)/255))
}

// ApplyKernel runs the kernel over every framebuffer pixel in place.
// Alpha passes through untouched. Unknown kinds are a no-op.
func ApplyKernel(fb *Framebuffer, kind KernelKind) {
	if kind == KernelNone || kind >= kernelCount {
		return
	}
	fn := kernelTable[kind]
	if fn == nil {
		return
	}
	for i := 0; i < len(fb.Pix); i += 4 {
		fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2] = fn(fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2])
	}
}
