package scan

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
)

var ErrUnknownFrameType = errors.New("unknown frame type")

// FrameType is a camera frame encoding the scanner accepts.
type FrameType string

const (
	FrameJPEG FrameType = "jpeg"
	FramePNG  FrameType = "png"
	FrameGIF  FrameType = "gif"
)

// SniffFrame detects the frame encoding from its magic bytes; the
// submitted Content-Type header is never trusted.
func SniffFrame(head []byte) (FrameType, error) {
	if isJPEG(head) {
		return FrameJPEG, nil
	}
	if isPNG(head) {
		return FramePNG, nil
	}
	if isGIF(head) {
		return FrameGIF, nil
	}
	return "", ErrUnknownFrameType
}

// DecodeFrame sniffs and decodes one camera frame.
func DecodeFrame(r io.Reader, maxBytes int64) (image.Image, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	frameType, err := SniffFrame(raw)
	if err != nil {
		return nil, err
	}

	var img image.Image
	switch frameType {
	case FrameJPEG:
		img, err = jpeg.Decode(bytes.NewReader(raw))
	case FramePNG:
		img, err = png.Decode(bytes.NewReader(raw))
	case FrameGIF:
		img, err = gif.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", frameType, err)
	}
	return img, nil
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}
