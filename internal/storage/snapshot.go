package storage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/san-kum/isingsim/internal/lattice"
)

var (
	upColor   = color.NRGBA{R: 0xf4, G: 0xf1, B: 0xde, A: 0xff}
	downColor = color.NRGBA{R: 0x1d, G: 0x35, B: 0x57, A: 0xff}
)

// Snapshot renders one pixel per spin and scales the image by an integer
// factor with nearest-neighbour sampling so cells stay sharp.
func Snapshot(lat *lattice.Lattice, scale int) *image.NRGBA {
	n := lat.Size()
	img := imaging.New(n, n, downColor)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if lat.At(i, j) == lattice.Up {
				img.SetNRGBA(j, i, upColor)
			}
		}
	}
	if scale <= 1 {
		return img
	}
	return imaging.Resize(img, n*scale, n*scale, imaging.NearestNeighbor)
}

// SaveSnapshot writes Snapshot(lat, scale) to path; the format follows the
// file extension.
func SaveSnapshot(path string, lat *lattice.Lattice, scale int) error {
	return imaging.Save(Snapshot(lat, scale), path)
}
