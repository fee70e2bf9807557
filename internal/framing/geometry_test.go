package framing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirror_SelfInverse(t *testing.T) {
	boxes := []Rect{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 37.5, Y: 12, Width: 120, Height: 140},
		{X: 600, Y: 400, Width: 40, Height: 80},
	}

	for _, box := range boxes {
		assert.Equal(t, box, Mirror(Mirror(box, 640), 640))
	}
}

func TestMirror(t *testing.T) {
	got := Mirror(Rect{X: 100, Y: 20, Width: 50, Height: 60}, 640)

	assert.Equal(t, Rect{X: 490, Y: 20, Width: 50, Height: 60}, got)
}

func TestViewport_ScaleIndependentAxes(t *testing.T) {
	vp := Viewport{
		Native:    Size{Width: 640, Height: 480},
		Displayed: Size{Width: 320, Height: 360},
	}

	got := vp.Scale(Rect{X: 100, Y: 100, Width: 200, Height: 200})

	assert.Equal(t, Rect{X: 50, Y: 75, Width: 100, Height: 150}, got)
}

func TestViewport_ZeroNativeSize(t *testing.T) {
	vp := Viewport{Displayed: Size{Width: 320, Height: 240}}

	assert.Zero(t, vp.ScaleX())
	assert.Zero(t, vp.ScaleY())
}

func TestViewport_ToScreen(t *testing.T) {
	vp := Viewport{
		Native:    Size{Width: 640, Height: 480},
		Displayed: Size{Width: 320, Height: 240},
		Offset:    Point{X: 100, Y: 50},
	}

	// left side of the native frame lands on the right of the mirrored preview
	got := vp.ToScreen(Rect{X: 0, Y: 140, Width: 200, Height: 200})

	assert.Equal(t, Rect{X: 320, Y: 120, Width: 100, Height: 100}, got)
}

func TestGuide(t *testing.T) {
	g := Guide{Rect: Rect{X: 160, Y: 70, Width: 200, Height: 200}}

	assert.Equal(t, Point{X: 260, Y: 170}, g.Center())
	assert.Equal(t, 100.0, g.Radius())
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4}))
}
