// Package scanner turns images into product codes. Decoders are tried in a
// fixed order (QR, then an optional platform detector, then 1D barcodes) and
// the first success wins.
package scanner

import (
	"context"
	"errors"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"go.uber.org/multierr"
)

// ErrNoCode is returned when no decoder found a code in the image.
var ErrNoCode = errors.New("scanner: no code found")

type Result struct {
	Text    string `json:"text"`
	Format  string `json:"format"`
	Decoder string `json:"decoder"`
}

type Decoder interface {
	Name() string
	Decode(ctx context.Context, img image.Image) (Result, error)
}

// DecoderFunc adapts a function into a named Decoder. Platform detectors are
// plugged in this way.
type DecoderFunc struct {
	Label string
	Fn    func(ctx context.Context, img image.Image) (Result, error)
}

func (d DecoderFunc) Name() string { return d.Label }

func (d DecoderFunc) Decode(ctx context.Context, img image.Image) (Result, error) {
	return d.Fn(ctx, img)
}

type zxingDecoder struct {
	name       string
	newReaders func() []gozxing.Reader
}

func (d *zxingDecoder) Name() string { return d.name }

func (d *zxingDecoder) Decode(_ context.Context, img image.Image) (Result, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Result{}, err
	}
	hints := map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_TRY_HARDER: true}

	var errs error
	for _, reader := range d.newReaders() {
		res, err := reader.Decode(bmp, hints)
		if err == nil {
			return Result{Text: res.GetText(), Format: res.GetBarcodeFormat().String(), Decoder: d.name}, nil
		}
		errs = multierr.Append(errs, err)
	}
	return Result{}, errs
}

// NewQRDecoder decodes QR codes only.
func NewQRDecoder() Decoder {
	return &zxingDecoder{
		name: "qr",
		newReaders: func() []gozxing.Reader {
			return []gozxing.Reader{qrcode.NewQRCodeReader()}
		},
	}
}

// NewBarcodeDecoder decodes the common retail 1D formats: EAN/UPC, Code 128 and Code 39.
func NewBarcodeDecoder() Decoder {
	return &zxingDecoder{
		name: "barcode",
		newReaders: func() []gozxing.Reader {
			return []gozxing.Reader{
				oned.NewMultiFormatUPCEANReader(nil),
				oned.NewCode128Reader(),
				oned.NewCode39Reader(),
			}
		},
	}
}

type Chain struct {
	decoders []Decoder
}

// NewChain builds the standard chain. native may be nil when the platform has
// no detector of its own.
func NewChain(native Decoder) *Chain {
	decoders := []Decoder{NewQRDecoder()}
	if native != nil {
		decoders = append(decoders, native)
	}
	decoders = append(decoders, NewBarcodeDecoder())
	return &Chain{decoders: decoders}
}

// NewChainOf builds a chain from explicit decoders, tried in the given order.
func NewChainOf(decoders ...Decoder) *Chain {
	return &Chain{decoders: decoders}
}

func (c *Chain) Names() []string {
	names := make([]string, len(c.decoders))
	for i, d := range c.decoders {
		names[i] = d.Name()
	}
	return names
}

// Decode stops at the first decoder that succeeds. When all fail, the error
// wraps ErrNoCode together with each decoder's failure.
func (c *Chain) Decode(ctx context.Context, img image.Image) (Result, error) {
	var errs error
	for _, d := range c.decoders {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res, err := d.Decode(ctx, img)
		if err == nil && res.Text != "" {
			if res.Decoder == "" {
				res.Decoder = d.Name()
			}
			return res, nil
		}
		if err == nil {
			err = errors.New("empty result")
		}
		errs = multierr.Append(errs, &decoderError{name: d.Name(), err: err})
	}
	return Result{}, multierr.Append(ErrNoCode, errs)
}

// DecodeReader decodes an encoded image (JPEG, PNG, GIF, BMP, TIFF), honouring EXIF orientation.
func (c *Chain) DecodeReader(ctx context.Context, r io.Reader) (Result, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, err
	}
	return c.Decode(ctx, img)
}

type decoderError struct {
	name string
	err  error
}

func (e *decoderError) Error() string { return e.name + ": " + e.err.Error() }

func (e *decoderError) Unwrap() error { return e.err }
