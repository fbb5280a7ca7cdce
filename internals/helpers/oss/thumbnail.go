package oss

import (
	"bytes"
	"fmt"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	thumbMaxW    = 480
	thumbMaxH    = 480
	thumbQuality = 80
)

// IsThumbnailable reports whether a WebP thumbnail is produced for ct.
func IsThumbnailable(ct string) bool {
	switch ct {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}

// MakeThumbnail decodes an image, fits it into thumbMaxW x thumbMaxH keeping
// the aspect ratio and encodes it as lossy WebP.
func MakeThumbnail(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > thumbMaxW || b.Dy() > thumbMaxH {
		img = imaging.Fit(img, thumbMaxW, thumbMaxH, imaging.CatmullRom)
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
