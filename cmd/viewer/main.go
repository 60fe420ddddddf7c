package main

import (
	"flag"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/monstercameron/softrender"
)

type viewer struct {
	renderer *softrender.Renderer
	camera   softrender.Camera
	img      *ebiten.Image
	angle    float32
}

func (v *viewer) Update() error {
	const moveSpeed = 0.08
	const lookSpeed = 0.03

	right, _, forward := v.camera.Basis()
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		v.camera.Position = v.camera.Position.Add(forward.Mul(moveSpeed))
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		v.camera.Position = v.camera.Position.Sub(forward.Mul(moveSpeed))
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		v.camera.Position = v.camera.Position.Sub(right.Mul(moveSpeed))
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		v.camera.Position = v.camera.Position.Add(right.Mul(moveSpeed))
	}
	if ebiten.IsKeyPressed(ebiten.KeySpace) {
		v.camera.Position[1] += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) {
		v.camera.Position[1] -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		v.camera.Yaw -= lookSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		v.camera.Yaw += lookSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		v.camera.Pitch += lookSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		v.camera.Pitch -= lookSpeed
	}
	if v.camera.Pitch > 1.5 {
		v.camera.Pitch = 1.5
	}
	if v.camera.Pitch < -1.5 {
		v.camera.Pitch = -1.5
	}

	v.angle += 0.01
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	light := softrender.DirectionalLight{
		Direction: mgl32.Vec3{
			float32(math.Sin(float64(v.angle))),
			-1,
			float32(math.Cos(float64(v.angle))),
		},
	}
	v.renderer.Render(&v.camera, light)

	fb := v.renderer.Framebuffer()
	if v.img == nil {
		v.img = ebiten.NewImage(fb.W, fb.H)
	}
	v.img.WritePixels(fb.Pix)
	screen.DrawImage(v.img, nil)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	fb := v.renderer.Framebuffer()
	return fb.W, fb.H
}

func main() {
	width := flag.Int("width", 960, "framebuffer width")
	height := flag.Int("height", 540, "framebuffer height")
	tile := flag.Int("tile", 64, "tile size in pixels")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := softrender.NewDefaultLogger("viewer", *debug)
	r, err := softrender.NewRenderer(softrender.RendererConfig{
		Width:      *width,
		Height:     *height,
		TileSize:   *tile,
		Background: softrender.RGB(18, 20, 30),
		ShowStats:  true,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("renderer init: %v", err)
	}
	defer r.Close()

	scene := softrender.SceneDef{
		Objects: []softrender.ObjectDef{
			{Kind: softrender.ObjectPlane, Position: mgl32.Vec3{0, -1, 0}, Size: 20, Segments: 10},
			{Kind: softrender.ObjectCube, Position: mgl32.Vec3{0, 0, 0}, Size: 2},
			{Kind: softrender.ObjectCube, Position: mgl32.Vec3{3, 0.5, 2}, Size: 1, Wire: true},
			{Kind: softrender.ObjectSphere, Position: mgl32.Vec3{-3, 0.5, 1}, Size: 2.4, Color: softrender.RGB(240, 160, 60)},
		},
	}
	r.SetScene(scene.Build()...)

	v := &viewer{
		renderer: r,
		camera:   softrender.Camera{Position: mgl32.Vec3{0, 1, -8}},
	}
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("softrender viewer")
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
