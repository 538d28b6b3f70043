// ABOUTME: Marker drawing on decoded frames.
// ABOUTME: Converts normalized landmark coordinates to pixels and paints a filled circle.
package highlight

import (
	"image"
	"image/color"
	"image/draw"
)

// Marker defaults.
var (
	MarkerColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	MarkerRadius = 10
)

// ToPixel maps a normalized point onto a frame of the given bounds.
// Coordinates are truncated, not rounded.
func ToPixel(p Point, bounds image.Rectangle) image.Point {
	return image.Point{
		X: bounds.Min.X + int(p.X*float64(bounds.Dx())),
		Y: bounds.Min.Y + int(p.Y*float64(bounds.Dy())),
	}
}

// DrawMarker fills a circle of radius r centred on c. Pixels outside the image
// are clipped.
func DrawMarker(img draw.Image, c image.Point, r int, col color.Color) {
	if r < 0 {
		return
	}
	area := image.Rect(c.X-r, c.Y-r, c.X+r+1, c.Y+r+1).Intersect(img.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		dy := y - c.Y
		for x := area.Min.X; x < area.Max.X; x++ {
			dx := x - c.X
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, col)
			}
		}
	}
}
