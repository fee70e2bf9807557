// Package framing decides whether a detected face sits inside the circular
// selfie guide. Detection runs on the unflipped camera frame while the user
// sees a mirrored preview, so boxes are mirrored before they are compared
// against screen-space guide coordinates.
package framing

import "math"

// Point is a position in pixels.
type Point struct {
	X float64
	Y float64
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the midpoint of the box.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate shifts the box by an offset.
func (r Rect) Translate(offset Point) Rect {
	return Rect{X: r.X + offset.X, Y: r.Y + offset.Y, Width: r.Width, Height: r.Height}
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Mirror flips a box horizontally inside a frame of the given width.
// Applying it twice with the same width yields the original box.
func Mirror(box Rect, nativeWidth float64) Rect {
	return Rect{
		X:      nativeWidth - (box.X + box.Width),
		Y:      box.Y,
		Width:  box.Width,
		Height: box.Height,
	}
}

// Viewport describes how the native video frame is laid out on screen.
type Viewport struct {
	// Native is the camera resolution the detector sees.
	Native Size
	// Displayed is the on-screen size of the video element.
	Displayed Size
	// Offset is the absolute screen position of the video element.
	Offset Point
}

// ScaleX and ScaleY are independent so a stretched preview is handled.
func (v Viewport) ScaleX() float64 {
	if v.Native.Width == 0 {
		return 0
	}
	return v.Displayed.Width / v.Native.Width
}

func (v Viewport) ScaleY() float64 {
	if v.Native.Height == 0 {
		return 0
	}
	return v.Displayed.Height / v.Native.Height
}

// Scale maps a native box to display coordinates relative to the video element.
func (v Viewport) Scale(box Rect) Rect {
	sx, sy := v.ScaleX(), v.ScaleY()
	return Rect{
		X:      box.X * sx,
		Y:      box.Y * sy,
		Width:  box.Width * sx,
		Height: box.Height * sy,
	}
}

// ToDisplay mirrors and scales a native detection box into the element's
// own coordinate space, which is what the overlay canvas draws in.
func (v Viewport) ToDisplay(box Rect) Rect {
	return v.Scale(Mirror(box, v.Native.Width))
}

// ToScreen returns the absolute screen position of a native detection box.
func (v Viewport) ToScreen(box Rect) Rect {
	return v.ToDisplay(box).Translate(v.Offset)
}

// Guide is the screen-space bounding rectangle of the circular overlay.
type Guide struct {
	Rect Rect
}

func (g Guide) Center() Point {
	return Point{X: g.Rect.X + g.Rect.Width/2, Y: g.Rect.Y + g.Rect.Height/2}
}

// Radius is half of the guide's width.
func (g Guide) Radius() float64 {
	return g.Rect.Width / 2
}
