package vegetation

import (
	"bytes"
	"errors"
	"testing"
)

func TestResize(t *testing.T) {
	src := NewImage(2, 2)
	src.SetRGB(0, 0, 10, 20, 30)
	src.SetRGB(1, 0, 40, 50, 60)
	src.SetRGB(0, 1, 70, 80, 90)
	src.SetRGB(1, 1, 100, 110, 120)

	out, err := Resize(src, 4, 4)
	if err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if out.Width != 4 || out.Height != 4 {
		t.Fatalf("got %dx%d, want 4x4", out.Width, out.Height)
	}
	// Nearest neighbor: each source pixel becomes a 2x2 block.
	r, g, b := out.RGB(0, 0)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("out(0,0) = (%d,%d,%d), want (10,20,30)", r, g, b)
	}
	r, g, b = out.RGB(3, 3)
	if r != 100 || g != 110 || b != 120 {
		t.Errorf("out(3,3) = (%d,%d,%d), want (100,110,120)", r, g, b)
	}

	if _, err := Resize(src, 0, 4); err == nil {
		t.Error("Resize to zero width: want error")
	}
}

func TestStretchContrast(t *testing.T) {
	src := NewImage(2, 1)
	src.SetRGB(0, 0, 50, 100, 128)
	src.SetRGB(1, 0, 100, 200, 128)

	out, err := StretchContrast(src)
	if err != nil {
		t.Fatalf("StretchContrast() = %v", err)
	}

	r0, g0, b0 := out.RGB(0, 0)
	r1, g1, b1 := out.RGB(1, 0)
	if r0 != 0 || r1 != 255 {
		t.Errorf("red channel = (%d,%d), want (0,255)", r0, r1)
	}
	if g0 != 0 || g1 != 255 {
		t.Errorf("green channel = (%d,%d), want (0,255)", g0, g1)
	}
	// Flat channel stays untouched.
	if b0 != 128 || b1 != 128 {
		t.Errorf("blue channel = (%d,%d), want (128,128)", b0, b1)
	}
	// Source unchanged.
	if r, _, _ := src.RGB(0, 0); r != 50 {
		t.Errorf("source mutated: red = %d, want 50", r)
	}
}

func TestSharpen(t *testing.T) {
	// A uniform frame is a fixed point of the kernel (weights sum to 1).
	src := NewImage(4, 4)
	src.Fill(90, 120, 60)

	out, err := Sharpen(src)
	if err != nil {
		t.Fatalf("Sharpen() = %v", err)
	}
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Error("uniform frame changed under sharpening")
	}

	// An edge gets amplified.
	src = NewImage(3, 1)
	src.SetRGB(0, 0, 100, 100, 100)
	src.SetRGB(1, 0, 100, 100, 100)
	src.SetRGB(2, 0, 200, 200, 200)
	out, err = Sharpen(src)
	if err != nil {
		t.Fatalf("Sharpen() = %v", err)
	}
	// center pixel: 5*100 - 100 - 200 - 2*100 (vertical neighbors replicate) = 0
	if r, _, _ := out.RGB(1, 0); r >= 100 {
		t.Errorf("dark side of edge = %d, want amplified below 100", r)
	}
	if r, _, _ := out.RGB(2, 0); r <= 200 {
		t.Errorf("bright side of edge = %d, want amplified above 200", r)
	}
}

func TestEnhance_InvalidInput(t *testing.T) {
	bad := &Image{Width: 3, Height: 3, Pix: make([]uint8, 5)}
	var invalid *InvalidImageError

	if _, err := StretchContrast(bad); !errors.As(err, &invalid) {
		t.Errorf("StretchContrast() = %v, want InvalidImageError", err)
	}
	if _, err := Sharpen(bad); !errors.As(err, &invalid) {
		t.Errorf("Sharpen() = %v, want InvalidImageError", err)
	}
	if _, err := Resize(bad, 2, 2); !errors.As(err, &invalid) {
		t.Errorf("Resize() = %v, want InvalidImageError", err)
	}
}
