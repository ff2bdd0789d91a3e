package orientation

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// EXIF orientation tag values (subset of the eight defined by the spec that
// describe pure rotations; mirrored variants also carry a flip).
const (
	orientTopLeft     = 1 // upright
	orientTopRight    = 2 // mirrored horizontally
	orientBottomRight = 3 // rotated 180
	orientBottomLeft  = 4 // mirrored vertically
	orientLeftTop     = 5 // mirrored and rotated 270 CW
	orientRightTop    = 6 // rotated 90 CW
	orientRightBottom = 7 // mirrored and rotated 90 CW
	orientLeftBottom  = 8 // rotated 270 CW
)

// exifOrientation extracts the orientation tag from an encoded image buffer.
// Missing or unreadable metadata returns ok=false.
func exifOrientation(raw []byte) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil || v < orientTopLeft || v > orientLeftBottom {
		return 0, false
	}
	return v, true
}

// applyExifOrientation applies the lossless transpose for the given tag and
// reports the rotation component in degrees counter-clockwise.
func applyExifOrientation(img image.Image, tag int) (image.Image, int) {
	switch tag {
	case orientTopRight:
		return imaging.FlipH(img), 0
	case orientBottomRight:
		return imaging.Rotate180(img), 180
	case orientBottomLeft:
		return imaging.FlipV(img), 0
	case orientLeftTop:
		return imaging.Rotate90(imaging.FlipH(img)), 90
	case orientRightTop:
		return imaging.Rotate270(img), 270
	case orientRightBottom:
		return imaging.Rotate270(imaging.FlipH(img)), 270
	case orientLeftBottom:
		return imaging.Rotate90(img), 90
	default:
		return img, 0
	}
}
