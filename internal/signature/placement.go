package signature

import "math"

// Box is a target rectangle in page units.
type Box struct {
	X, Y, W, H float64
}

// Placement is where a signature is drawn inside a Box.
type Placement struct {
	X, Y, W, H float64
}

// PlaceInBox scales an imgW x imgH image uniformly so it fits inside box and
// centers it on both axes. Degenerate images yield an empty placement at
// the box center.
func PlaceInBox(imgW, imgH int, box Box) Placement {
	if imgW <= 0 || imgH <= 0 || box.W <= 0 || box.H <= 0 {
		return Placement{X: box.X + box.W/2, Y: box.Y + box.H/2}
	}

	scale := math.Min(box.W/float64(imgW), box.H/float64(imgH))
	w := float64(imgW) * scale
	h := float64(imgH) * scale

	return Placement{
		X: box.X + (box.W-w)/2,
		Y: box.Y + (box.H-h)/2,
		W: w,
		H: h,
	}
}
