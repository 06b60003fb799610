// Package vegetation detects plant material in normalized aerial frames and
// reduces it to a single health score.
//
// Frames are plain in-memory RGB buffers (3 channels, 0-255), so the whole
// pipeline is testable with synthetic images and needs no image files or
// native bindings. Like the soil evaluator, every call is a pure function of
// its inputs plus a fixed configuration.
package vegetation

import "fmt"

// Channels is the required number of color channels per pixel.
const Channels = 3

// InvalidImageError reports a frame buffer that violates the preprocessing
// contract (positive dimensions, width*height*3 interleaved RGB bytes).
type InvalidImageError struct {
	Reason string
}

func (e *InvalidImageError) Error() string {
	return "vegetation: invalid image: " + e.Reason
}

// Image is a row-major interleaved RGB frame, one byte per channel.
// The preprocessing collaborator guarantees the 0-255 range by construction.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewImage allocates a zeroed (all-black) frame.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]uint8, width*height*Channels)}
}

// FromPixels wraps a caller-supplied buffer, rejecting shape mismatches.
func FromPixels(width, height int, pix []uint8) (*Image, error) {
	img := &Image{Width: width, Height: height, Pix: pix}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate checks the buffer shape against the declared dimensions.
func (m *Image) Validate() error {
	if m == nil {
		return &InvalidImageError{Reason: "nil image"}
	}
	if m.Width <= 0 || m.Height <= 0 {
		return &InvalidImageError{Reason: fmt.Sprintf("non-positive dimensions %dx%d", m.Width, m.Height)}
	}
	if want := m.Width * m.Height * Channels; len(m.Pix) != want {
		return &InvalidImageError{Reason: fmt.Sprintf("buffer has %d bytes, want %d (%dx%dx%d)",
			len(m.Pix), want, m.Width, m.Height, Channels)}
	}
	return nil
}

// RGB returns the pixel at (x,y).
func (m *Image) RGB(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * Channels
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// SetRGB writes the pixel at (x,y).
func (m *Image) SetRGB(x, y int, r, g, b uint8) {
	i := (y*m.Width + x) * Channels
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Fill paints the whole frame one color.
func (m *Image) Fill(r, g, b uint8) {
	for i := 0; i < len(m.Pix); i += Channels {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
	}
}

// Mask flags the pixels of a frame classified as vegetation. It shares the
// spatial dimensions of its source image.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// Count returns the number of vegetation pixels.
func (k *Mask) Count() int {
	n := 0
	for _, b := range k.Bits {
		if b {
			n++
		}
	}
	return n
}

// rgbToHSV converts one pixel to the OpenCV-style HSV scale:
// hue 0-179 (half degrees), saturation and value 0-255.
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf, gf, bf := float64(r), float64(g), float64(b)

	max := rf
	if gf > max {
		max = gf
	}
	if bf > max {
		max = bf
	}
	min := rf
	if gf < min {
		min = gf
	}
	if bf < min {
		min = bf
	}

	v = max
	delta := max - min
	if max > 0 {
		s = 255 * delta / max
	}
	if delta == 0 {
		return 0, s, v
	}

	var deg float64
	switch max {
	case rf:
		deg = 60 * (gf - bf) / delta
	case gf:
		deg = 120 + 60*(bf-rf)/delta
	default:
		deg = 240 + 60*(rf-gf)/delta
	}
	if deg < 0 {
		deg += 360
	}
	return deg / 2, s, v
}
