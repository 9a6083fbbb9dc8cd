package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"highwaysim/roadsim"
)

// Filesystem is the port through which a Raster sink writes its final
// image. Kept separate from the sink itself so tests can substitute an
// in-memory filesystem.
type Filesystem interface {
	Create(path string) (io.WriteCloser, error)
}

// OSFilesystem writes through the real filesystem via os.Create.
type OSFilesystem struct{}

func (OSFilesystem) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

var (
	separatorColor = color.RGBA{90, 90, 90, 255}
	blockedColor   = color.RGBA{40, 40, 60, 255}
)

// Raster accumulates one image row-band per round, filling from the
// bottom row upward so the final PNG reads top-to-bottom as
// newest-to-oldest. When there is more than one lane, each round's band
// is followed by a one-pixel separator row. The accumulated image is
// written once at Close.
type Raster struct {
	img        *image.RGBA
	currentRow int
	separator  bool
	fs         Filesystem
	path       string
}

// NewRaster preallocates an image sized for lanes x length x rounds,
// ready to receive exactly `rounds` calls to AddSnapshot.
func NewRaster(road *roadsim.Road, rounds int, path string, fs Filesystem) *Raster {
	separator := road.Lanes() > 1
	rowsPerRound := road.Lanes()
	if separator {
		rowsPerRound++
	}
	height := rowsPerRound * rounds
	return &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, road.Length(), height)),
		currentRow: height,
		separator:  separator,
		fs:         fs,
		path:       path,
	}
}

func (r *Raster) AddSnapshot(road *roadsim.Road) error {
	if r.currentRow == 0 {
		return fmt.Errorf("snapshot: raster image is already full")
	}
	for l := 0; l < road.Lanes(); l++ {
		r.currentRow--
		for c := 0; c < road.Length(); c++ {
			cell := road.Cell(l, c)
			switch {
			case cell.Blocked():
				r.img.Set(c, r.currentRow, blockedColor)
			case cell.Car() != nil:
				r.img.Set(c, r.currentRow, speedColor(cell.Car().Speed(), road.MaxSpeed()))
			}
		}
	}
	if r.separator {
		r.currentRow--
		for x := 0; x < r.img.Bounds().Dx(); x++ {
			r.img.Set(x, r.currentRow, separatorColor)
		}
	}
	return nil
}

// speedColor maps a car's speed to a red->green ramp: stopped traffic is
// red, half of max speed is yellow, and max speed is green.
func speedColor(speed, maxSpeed uint8) color.RGBA {
	if maxSpeed == 0 {
		return color.RGBA{255, 255, 0, 255}
	}
	speedNorm := float32(speed) / float32(maxSpeed)
	red, green := uint8(255), uint8(255)
	if speedNorm <= 0.5 {
		green = uint8(255.0 * 2.0 * speedNorm)
	} else {
		red = uint8(255.0 * 2.0 * (1.0 - speedNorm))
	}
	return color.RGBA{red, green, 0, 255}
}

func (r *Raster) Close() error {
	w, err := r.fs.Create(r.path)
	if err != nil {
		return fmt.Errorf("snapshot: creating %s: %w", r.path, err)
	}
	defer w.Close()
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("snapshot: encoding %s: %w", r.path, err)
	}
	return nil
}
