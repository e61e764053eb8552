package scan

import (
	"errors"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ErrNoCode means the frame held no readable barcode; the scanner
// keeps waiting for the next frame.
var ErrNoCode = errors.New("no barcode in frame")

// Decoder extracts barcode text from a single frame.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// ZXingDecoder wraps the gozxing Code 128 reader, the symbology the
// asset labels are printed with.
type ZXingDecoder struct {
	reader gozxing.Reader
}

func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{reader: oned.NewCode128Reader()}
}

func (d *ZXingDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", ErrNoCode
	}

	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		return "", ErrNoCode
	}

	text := strings.TrimSpace(result.GetText())
	if text == "" {
		return "", ErrNoCode
	}
	return text, nil
}

// Normalize strips any path-like prefix from decoded barcode text, so
// a scanned label carrying "uploads/IMG_x.png" resolves by its bare
// image name.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexAny(text, `/\`); idx >= 0 {
		text = text[idx+1:]
	}
	return text
}
