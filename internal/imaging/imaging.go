// Package imaging normalises item photos before they are stored: JPEG and
// PNG input, at most MaxWidth pixels wide, re-encoded as JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxWidth is the widest photo that is stored. Height is not capped.
const MaxWidth = 800

// JPEGQuality is the quality of the re-encoded photo.
const JPEGQuality = 80

// MaxInputBytes bounds how much of an upload is read.
const MaxInputBytes = 20 << 20

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result is a processed photo.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process validates r by sniffing its content, flattens any transparency onto
// white, narrows the photo to MaxWidth and encodes it as JPEG.
func Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxInputBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxInputBytes)
	}

	if mime := http.DetectContentType(data); !allowedMIME[mime] {
		return nil, fmt.Errorf("unsupported image format %s: only JPEG and PNG are accepted", mime)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	dst := fitWidth(src, MaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	b := dst.Bounds()
	return &Result{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// fitWidth draws src onto an opaque white canvas, scaling it down with
// Catmull-Rom when it is wider than maxWidth. Narrower photos keep their size.
func fitWidth(src image.Image, maxWidth int) *image.RGBA {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w > maxWidth {
		h = max(1, int(float64(h)*float64(maxWidth)/float64(w)))
		w = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	}
	return dst
}
