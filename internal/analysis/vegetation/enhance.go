package vegetation

// Utility pipeline stages outside the scoring contract. Each stage is pure
// and order-independent: input frame in, fresh frame out, the source is
// never written.

// Resize scales the frame to the target dimensions with nearest-neighbor
// sampling. The preprocessing collaborator uses it to normalize captures to
// the canonical analysis size.
func Resize(img *Image, width, height int) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, &InvalidImageError{Reason: "non-positive target dimensions"}
	}

	out := NewImage(width, height)
	for y := 0; y < height; y++ {
		srcY := y * img.Height / height
		for x := 0; x < width; x++ {
			srcX := x * img.Width / width
			r, g, b := img.RGB(srcX, srcY)
			out.SetRGB(x, y, r, g, b)
		}
	}
	return out, nil
}

// StretchContrast linearly rescales each channel to the full 0-255 range.
// A flat channel (min == max) is left as-is.
func StretchContrast(img *Image) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	var lo, hi [Channels]uint8
	for c := 0; c < Channels; c++ {
		lo[c], hi[c] = 255, 0
	}
	for i := 0; i < len(img.Pix); i += Channels {
		for c := 0; c < Channels; c++ {
			v := img.Pix[i+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}

	out := NewImage(img.Width, img.Height)
	for i := 0; i < len(img.Pix); i += Channels {
		for c := 0; c < Channels; c++ {
			v := img.Pix[i+c]
			if hi[c] == lo[c] {
				out.Pix[i+c] = v
				continue
			}
			out.Pix[i+c] = uint8(int(v-lo[c]) * 255 / int(hi[c]-lo[c]))
		}
	}
	return out, nil
}

// sharpenKernel is the classic 3x3 sharpening convolution (sums to 1).
var sharpenKernel = [3][3]int{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen applies the 3x3 sharpening kernel with edge replication.
func Sharpen(img *Image) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	out := NewImage(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			var acc [Channels]int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sx := clampInt(x+kx, 0, img.Width-1)
					sy := clampInt(y+ky, 0, img.Height-1)
					w := sharpenKernel[ky+1][kx+1]
					r, g, b := img.RGB(sx, sy)
					acc[0] += w * int(r)
					acc[1] += w * int(g)
					acc[2] += w * int(b)
				}
			}
			out.SetRGB(x, y, clampByte(acc[0]), clampByte(acc[1]), clampByte(acc[2]))
		}
	}
	return out, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
