package drone

import (
	"math/rand"
	"sync"

	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
)

// SyntheticFrames returns a frame source painting bare-soil browns with a
// given fraction of green canopy pixels. The greens keep r == b so their hue
// sits in the middle of the detection band regardless of brightness.
func SyntheticFrames(vegFraction float64, seed int64) FrameSource {
	if vegFraction < 0 {
		vegFraction = 0
	}
	if vegFraction > 1 {
		vegFraction = 1
	}

	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))

	return func(width, height int) *vegetation.Image {
		mu.Lock()
		defer mu.Unlock()

		img := vegetation.NewImage(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if rng.Float64() < vegFraction {
					base := uint8(20 + rng.Intn(60))
					g := uint8(150 + rng.Intn(106))
					img.SetRGB(x, y, base, g, base)
				} else {
					r := uint8(110 + rng.Intn(40))
					g := uint8(80 + rng.Intn(30))
					b := uint8(50 + rng.Intn(30))
					img.SetRGB(x, y, r, g, b)
				}
			}
		}
		return img
	}
}
