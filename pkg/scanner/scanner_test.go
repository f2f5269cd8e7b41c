package scanner

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blank() image.Image {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(color.White.Y >> 8)
	}
	return img
}

type countingDecoder struct {
	name  string
	text  string
	err   error
	calls int32
}

func (d *countingDecoder) Name() string { return d.name }

func (d *countingDecoder) Decode(context.Context, image.Image) (Result, error) {
	atomic.AddInt32(&d.calls, 1)
	if d.err != nil {
		return Result{}, d.err
	}
	return Result{Text: d.text, Format: "TEST"}, nil
}

func strPtr(s string) *string { return &s }

func catalog() []model.Product {
	return []model.Product{
		{BaseModel: model.BaseModel{ID: "p1"}, Name: "Tea", QRCode: strPtr("abc123")},
		{BaseModel: model.BaseModel{ID: "p2"}, Name: "Coffee", QRCode: strPtr("ABC123")},
		{BaseModel: model.BaseModel{ID: "p3"}, Name: "Sugar"},
	}
}

func TestNewChainOrder(t *testing.T) {
	assert.Equal(t, []string{"qr", "barcode"}, NewChain(nil).Names())

	native := DecoderFunc{Label: "native", Fn: func(context.Context, image.Image) (Result, error) {
		return Result{}, ErrNoCode
	}}
	assert.Equal(t, []string{"qr", "native", "barcode"}, NewChain(native).Names())
}

func TestChainFirstSuccessWins(t *testing.T) {
	qr := &countingDecoder{name: "qr", err: errors.New("not found")}
	native := &countingDecoder{name: "native", text: "ABC123"}
	barcode := &countingDecoder{name: "barcode", text: "999"}

	res, err := NewChainOf(qr, native, barcode).Decode(context.Background(), blank())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", res.Text)
	assert.Equal(t, "native", res.Decoder)
	assert.EqualValues(t, 1, qr.calls)
	assert.EqualValues(t, 1, native.calls)
	assert.EqualValues(t, 0, barcode.calls)
}

func TestChainQRWinsOverLaterDecoders(t *testing.T) {
	qr := &countingDecoder{name: "qr", text: "QR-1"}
	barcode := &countingDecoder{name: "barcode", text: "999"}

	res, err := NewChainOf(qr, barcode).Decode(context.Background(), blank())
	require.NoError(t, err)
	assert.Equal(t, "QR-1", res.Text)
	assert.EqualValues(t, 0, barcode.calls)
}

func TestChainAggregatesFailures(t *testing.T) {
	boom := errors.New("boom")
	chain := NewChainOf(
		&countingDecoder{name: "qr", err: boom},
		&countingDecoder{name: "barcode", text: ""},
	)

	_, err := chain.Decode(context.Background(), blank())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCode)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "qr: boom")
	assert.Contains(t, err.Error(), "barcode: empty result")
}

func TestChainHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &countingDecoder{name: "qr", text: "x"}

	_, err := NewChainOf(d).Decode(ctx, blank())
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, d.calls)
}

func TestZXingDecodersFindNothingOnBlankImage(t *testing.T) {
	_, err := NewChain(nil).Decode(context.Background(), blank())
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestDecodeReaderFindsQRCode(t *testing.T) {
	img, err := qrcode.NewQRCodeWriter().Encode("ABC123", gozxing.BarcodeFormat_QR_CODE, 250, 250, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	res, err := NewChain(nil).DecodeReader(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", res.Text)
	assert.Equal(t, "qr", res.Decoder)
	assert.Equal(t, "QR_CODE", res.Format)
}

func TestMatchProduct(t *testing.T) {
	products := catalog()

	got := MatchProduct(products, "ABC123")
	require.NotNil(t, got)
	assert.Equal(t, "p2", got.ID, "exact match wins")

	got = MatchProduct(products[:1], " ABC123 ")
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)

	assert.Nil(t, MatchProduct(products, "zzz"))
	assert.Nil(t, MatchProduct(products, "   "))
}

func TestClassifyCameraError(t *testing.T) {
	tests := []struct {
		err  error
		want CameraErrorCode
	}{
		{errors.New("NotAllowedError: Permission denied"), CameraPermissionDenied},
		{errors.New("NotFoundError: Requested device not found"), CameraNoDevice},
		{errors.New("NotReadableError: Could not start video source"), CameraInUse},
		{errors.New("OverconstrainedError"), CameraOverconstrained},
		{errors.New("SecurityError"), CameraInsecureContext},
		{context.DeadlineExceeded, CameraTimeout},
		{errors.New("something odd"), CameraUnknown},
		{NewCameraError(CameraInUse, errors.New("NotAllowedError")), CameraInUse},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ce := ClassifyCameraError(tt.err)
			require.NotNil(t, ce)
			assert.Equal(t, tt.want, ce.Code)
			assert.NotEmpty(t, ce.Message())
		})
	}
	assert.Nil(t, ClassifyCameraError(nil))
}

type fakeCamera struct {
	secure     bool
	has        bool
	hasErr     error
	startErr   error
	readyAfter int32
	polls      int32
	frame      image.Image
	stopped    int32
}

func (c *fakeCamera) SecureContext() bool { return c.secure }

func (c *fakeCamera) HasCamera(context.Context) (bool, error) { return c.has, c.hasErr }

func (c *fakeCamera) Start(context.Context) error { return c.startErr }

func (c *fakeCamera) Ready() bool {
	return atomic.AddInt32(&c.polls, 1) > c.readyAfter
}

func (c *fakeCamera) Capture(context.Context) (image.Image, error) { return c.frame, nil }

func (c *fakeCamera) Stop() error {
	atomic.AddInt32(&c.stopped, 1)
	return nil
}

func loaded(t *testing.T, text string, opts ...Option) *Scanner {
	t.Helper()
	chain := NewChainOf(&countingDecoder{name: "qr", text: text})
	s := New(append([]Option{WithChain(chain), WithReadinessPoll(3, time.Millisecond)}, opts...)...)
	assert.Equal(t, StateIdle, s.State())
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, StateReady, s.State())
	return s
}

func TestScanImageFlow(t *testing.T) {
	s := loaded(t, "ABC123")

	out, err := s.ScanImage(context.Background(), blank(), catalog()[:1])
	require.NoError(t, err)
	require.NotNil(t, out.Product)
	assert.Equal(t, "p1", out.Product.ID)
	assert.Equal(t, StateProductFound, s.State())

	out, err = s.ScanImage(context.Background(), blank(), catalog()[2:])
	require.NoError(t, err)
	assert.Nil(t, out.Product)
	assert.Equal(t, StateNotFound, s.State())

	s.Reset()
	assert.Equal(t, StateReady, s.State())
}

func TestScanBeforeLoadIsRejected(t *testing.T) {
	s := New()
	_, err := s.ScanImage(context.Background(), blank(), nil)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateIdle, s.State())
}

func TestScanNoCode(t *testing.T) {
	chain := NewChainOf(&countingDecoder{name: "qr", err: errors.New("nope")})
	s := New(WithChain(chain))
	require.NoError(t, s.Load(context.Background()))

	_, err := s.ScanImage(context.Background(), blank(), catalog())
	assert.ErrorIs(t, err, ErrNoCode)
	assert.Equal(t, StateNotFound, s.State())
	assert.ErrorIs(t, s.Err(), ErrNoCode)
}

func TestCameraFlow(t *testing.T) {
	cam := &fakeCamera{secure: true, has: true, readyAfter: 1, frame: blank()}
	s := loaded(t, "abc123", WithCamera(cam))

	require.NoError(t, s.StartCamera(context.Background()))
	assert.Equal(t, StateCameraActive, s.State())

	out, err := s.Capture(context.Background(), catalog())
	require.NoError(t, err)
	require.NotNil(t, out.Product)
	assert.Equal(t, "p1", out.Product.ID)
	assert.Equal(t, StateProductFound, s.State())

	s.Reset()
	assert.Equal(t, StateCameraActive, s.State())

	require.NoError(t, s.StopCamera())
	assert.Equal(t, StateReady, s.State())
	assert.EqualValues(t, 1, cam.stopped)

	_, err = s.Capture(context.Background(), catalog())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStartCameraFailures(t *testing.T) {
	tests := []struct {
		name string
		cam  *fakeCamera
		want CameraErrorCode
	}{
		{"insecure", &fakeCamera{secure: false, has: true}, CameraInsecureContext},
		{"no device", &fakeCamera{secure: true, has: false}, CameraNoDevice},
		{"permission", &fakeCamera{secure: true, has: true, startErr: errors.New("NotAllowedError")}, CameraPermissionDenied},
		{"never ready", &fakeCamera{secure: true, has: true, readyAfter: 100}, CameraTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loaded(t, "x", WithCamera(tt.cam))

			err := s.StartCamera(context.Background())
			var ce *CameraError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Code)
			assert.Equal(t, StateReady, s.State())
		})
	}
}

func TestStartCameraTimeoutStopsDevice(t *testing.T) {
	cam := &fakeCamera{secure: true, has: true, readyAfter: 100}
	s := loaded(t, "x", WithCamera(cam))

	require.Error(t, s.StartCamera(context.Background()))
	assert.EqualValues(t, 1, cam.stopped)
	assert.EqualValues(t, 4, cam.polls)
}
