// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded business logos. Any decodable image
// (PNG, JPEG, GIF, BMP, TIFF) is auto-oriented, shrunk to fit the logo box
// without upscaling, and re-encoded as PNG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

const (
	// MaxLogoBytes bounds the accepted upload size.
	MaxLogoBytes = 5 << 20

	// MaxLogoDimension is the longest side of a normalised logo.
	MaxLogoDimension = 512

	// maxSourcePixels rejects images that would be too large to decode.
	maxSourcePixels = 40_000_000
)

var (
	ErrEmpty       = errors.New("imaging: empty image")
	ErrTooLarge    = errors.New("imaging: image too large")
	ErrUnsupported = errors.New("imaging: unsupported image format")
)

// Logo is a normalised logo ready for upload.
type Logo struct {
	Data   []byte // PNG-encoded
	Width  int
	Height int
}

// NormalizeLogo decodes data and returns a PNG no larger than
// MaxLogoDimension on either side.
func NormalizeLogo(data []byte) (*Logo, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxLogoBytes {
		return nil, ErrTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	b := img.Bounds()
	if b.Dx() > MaxLogoDimension || b.Dy() > MaxLogoDimension {
		img = imaging.Fit(img, MaxLogoDimension, MaxLogoDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}

	out := img.Bounds()
	slog.Debug("logo normalised",
		"format", format,
		"source", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"output", fmt.Sprintf("%dx%d", out.Dx(), out.Dy()),
		"bytes", buf.Len(),
	)
	return &Logo{Data: buf.Bytes(), Width: out.Dx(), Height: out.Dy()}, nil
}
