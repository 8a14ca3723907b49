package mdv

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pixelsPerCell approximates the width of one terminal cell.
const pixelsPerCell = 8

// DisplayWidth is the width an image is shown at. The zero value means
// native size: no width parameter is sent and the terminal decides.
type DisplayWidth struct {
	Cells int
}

// NativeWidth displays an image at its intrinsic size.
var NativeWidth = DisplayWidth{}

// Native reports whether no explicit width is set.
func (d DisplayWidth) Native() bool { return d.Cells <= 0 }

func (d DisplayWidth) String() string {
	if d.Native() {
		return "native"
	}
	return strconv.Itoa(d.Cells)
}

// WidthCells decides the display width of an image for available columns.
// Images wider than available (at 8 px per cell) are shrunk to available;
// everything else, including undecodable data, is shown at native size.
func WidthCells(data []byte, available int) DisplayWidth {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return NativeWidth
	}
	if available > 0 && cfg.Width/pixelsPerCell > available {
		return DisplayWidth{Cells: available}
	}
	return NativeWidth
}
