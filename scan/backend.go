// Package scan wraps decoders behind a common interface and gates how many
// decodes a caller may run.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/liyue201/goqr"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/charset"
	"github.com/qrsnap/qrsnap/qrcode"
	"github.com/qrsnap/qrsnap/qrcode/decoder"
)

// ErrUnsupportedPayload is returned by PlatformBackend for payloads it cannot
// render faithfully.
var ErrUnsupportedPayload = errors.New("scan: payload not supported by backend")

// Backend decodes a QR code from an image.
type Backend interface {
	Decode(ctx context.Context, img image.Image) (*qrsnap.Result, error)
}

// EngineBackend decodes with qrcode.Reader.
type EngineBackend struct {
	reader *qrcode.Reader
}

// NewEngineBackend creates an EngineBackend. opts may be nil.
func NewEngineBackend(opts *qrsnap.Options) *EngineBackend {
	return &EngineBackend{reader: qrcode.NewReader(opts)}
}

// Decode decodes img.
func (b *EngineBackend) Decode(ctx context.Context, img image.Image) (*qrsnap.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if err := qrsnap.CheckSize(bounds.Dx(), bounds.Dy(), b.reader.Options().MaxPixels); err != nil {
		return nil, err
	}
	return b.reader.Decode(qrsnap.NewImageSource(img))
}

func (b *EngineBackend) String() string { return "engine" }

// PlatformBackend decodes with github.com/liyue201/goqr. It returns
// ErrUnsupportedPayload for kanji and ECI payloads, which it does not
// interpret, so it should be chained before EngineBackend.
type PlatformBackend struct {
	// MaxPixels bounds the image size; zero means qrsnap.DefaultMaxPixels.
	MaxPixels int
}

// Decode decodes the first code goqr finds in img.
func (b *PlatformBackend) Decode(ctx context.Context, img image.Image) (*qrsnap.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	maxPixels := b.MaxPixels
	if maxPixels <= 0 {
		maxPixels = qrsnap.DefaultMaxPixels
	}
	bounds := img.Bounds()
	if err := qrsnap.CheckSize(bounds.Dx(), bounds.Dy(), maxPixels); err != nil {
		return nil, err
	}

	codes, err := goqr.Recognize(img)
	if err != nil {
		if errors.Is(err, goqr.ErrNoQRCode) {
			return nil, fmt.Errorf("%w: %v", qrsnap.ErrNoFinderPatterns, err)
		}
		return nil, fmt.Errorf("goqr: %w", err)
	}
	if len(codes) == 0 {
		return nil, qrsnap.ErrNoFinderPatterns
	}
	code := codes[0]
	if code.Eci != 0 || code.DataType&kanjiDataType != 0 {
		return nil, fmt.Errorf("%w: data type %#x, eci %d", ErrUnsupportedPayload, code.DataType, code.Eci)
	}

	payload := make([]byte, len(code.Payload))
	copy(payload, code.Payload)
	text, cs := charset.DecodeText(payload, "")
	res := qrsnap.NewResult(text, payload, nil, nil)
	res.Version = code.Version
	if level, err := decoder.ECLevelForBits(code.EccLevel); err == nil {
		res.ECLevel = level.String()
	}
	res.Mask = code.Mask
	if cs != nil {
		res.PutMetadata(qrsnap.MetadataCharacterSet, cs.Name)
	}
	return res, nil
}

func (b *PlatformBackend) String() string { return "platform" }

// kanjiDataType is goqr's DataType bit for kanji segments.
const kanjiDataType = 8

// Chain tries Primary and falls back to Fallback on any error other than
// context cancellation. A nil Primary goes straight to Fallback.
type Chain struct {
	Primary  Backend
	Fallback Backend
	Logger   qrsnap.Logger
}

// Decode decodes img with the first backend that succeeds.
func (c *Chain) Decode(ctx context.Context, img image.Image) (*qrsnap.Result, error) {
	if c.Primary != nil {
		res, err := c.Primary.Decode(ctx, img)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if c.Fallback == nil {
			return nil, err
		}
		if c.Logger != nil {
			c.Logger.Printf("DEBUG: %v failed, falling back to %v: %v", c.Primary, c.Fallback, err)
		}
	}
	if c.Fallback == nil {
		return nil, errors.New("scan: chain has no backends")
	}
	return c.Fallback.Decode(ctx, img)
}
