package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type State string

const (
	StateIdle             State = "idle"
	StateLibrariesLoading State = "librariesLoading"
	StateReady            State = "ready"
	StateFileScanning     State = "fileScanning"
	StateCameraStarting   State = "cameraStarting"
	StateCameraActive     State = "cameraActive"
	StateCapturing        State = "capturing"
	StateProductFound     State = "productFound"
	StateNotFound         State = "notFound"
)

var transitions = map[State][]State{
	StateIdle:             {StateLibrariesLoading},
	StateLibrariesLoading: {StateReady, StateIdle},
	StateReady:            {StateFileScanning, StateCameraStarting},
	StateFileScanning:     {StateProductFound, StateNotFound, StateReady},
	StateCameraStarting:   {StateCameraActive, StateReady},
	StateCameraActive:     {StateCapturing, StateReady},
	StateCapturing:        {StateProductFound, StateNotFound, StateCameraActive},
	StateProductFound:     {StateReady, StateFileScanning, StateCameraStarting, StateCapturing},
	StateNotFound:         {StateReady, StateFileScanning, StateCameraStarting, StateCapturing},
}

var ErrInvalidState = errors.New("scanner: operation not allowed in current state")

const (
	defaultPollAttempts = 20
	defaultPollInterval = 100 * time.Millisecond
)

// Outcome is the result of one scan. Product is nil when the code matched nothing.
type Outcome struct {
	Result  Result         `json:"result"`
	Product *model.Product `json:"product"`
}

type Option func(*Scanner)

// WithCamera enables the camera flow.
func WithCamera(cam Camera) Option {
	return func(s *Scanner) { s.camera = cam }
}

// WithNativeDecoder plugs a platform detector between the QR and barcode decoders.
func WithNativeDecoder(d Decoder) Option {
	return func(s *Scanner) { s.native = d }
}

// WithReadinessPoll overrides the 20 x 100ms camera readiness poll.
func WithReadinessPoll(attempts int, interval time.Duration) Option {
	return func(s *Scanner) {
		s.pollAttempts = attempts
		s.pollInterval = interval
	}
}

// WithChain replaces the decoder chain built by Load.
func WithChain(c *Chain) Option {
	return func(s *Scanner) { s.preset = c }
}

// Scanner drives the scan flow: load decoders, scan a file or run the camera,
// then match the decoded code against a product list.
type Scanner struct {
	mu       sync.Mutex
	state    State
	cameraOn bool
	chain    *Chain
	lastErr  error

	preset       *Chain
	native       Decoder
	camera       Camera
	pollAttempts int
	pollInterval time.Duration
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		state:        StateIdle,
		pollAttempts: defaultPollAttempts,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the failure of the last operation, if any.
func (s *Scanner) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Scanner) transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(to)
}

func (s *Scanner) transitionLocked(to State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.state, to)
}

func (s *Scanner) fail(to State, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = to
	s.lastErr = err
	return err
}

// Load builds the decoder chain. It is safe to call again once ready.
func (s *Scanner) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLibrariesLoading
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.fail(StateIdle, err)
	}
	chain := s.preset
	if chain == nil {
		chain = NewChain(s.native)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = chain
	s.lastErr = nil
	return s.transitionLocked(StateReady)
}

// ScanImage decodes an already decoded image.
func (s *Scanner) ScanImage(ctx context.Context, img image.Image, products []model.Product) (*Outcome, error) {
	if err := s.transition(StateFileScanning); err != nil {
		return nil, err
	}
	return s.finish(ctx, img, products, StateReady)
}

// ScanFile decodes an encoded image such as an uploaded photo.
func (s *Scanner) ScanFile(ctx context.Context, r io.Reader, products []model.Product) (*Outcome, error) {
	if err := s.transition(StateFileScanning); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, s.fail(StateReady, fmt.Errorf("decode image: %w", err))
	}
	return s.finish(ctx, img, products, StateReady)
}

// StartCamera runs the environment checks, starts the device and waits for
// it to become ready. Failures come back as *CameraError and leave the
// scanner ready for a file scan.
func (s *Scanner) StartCamera(ctx context.Context) error {
	if s.camera == nil {
		return s.fail(s.State(), NewCameraError(CameraNoDevice, errors.New("no camera configured")))
	}
	if err := s.transition(StateCameraStarting); err != nil {
		return err
	}

	if !s.camera.SecureContext() {
		return s.fail(StateReady, NewCameraError(CameraInsecureContext, nil))
	}
	ok, err := s.camera.HasCamera(ctx)
	if err != nil {
		return s.fail(StateReady, ClassifyCameraError(err))
	}
	if !ok {
		return s.fail(StateReady, NewCameraError(CameraNoDevice, nil))
	}
	if err := s.camera.Start(ctx); err != nil {
		return s.fail(StateReady, ClassifyCameraError(err))
	}

	if err := s.waitReady(ctx); err != nil {
		_ = s.camera.Stop()
		return s.fail(StateReady, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraOn = true
	s.lastErr = nil
	return s.transitionLocked(StateCameraActive)
}

func (s *Scanner) waitReady(ctx context.Context) error {
	for i := 0; i < s.pollAttempts; i++ {
		if s.camera.Ready() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ClassifyCameraError(ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}
	if s.camera.Ready() {
		return nil
	}
	return NewCameraError(CameraTimeout, fmt.Errorf("not ready after %d checks", s.pollAttempts))
}

// Capture grabs one frame from the running camera and scans it.
func (s *Scanner) Capture(ctx context.Context, products []model.Product) (*Outcome, error) {
	s.mu.Lock()
	if !s.cameraOn {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: camera is not running", ErrInvalidState)
	}
	if err := s.transitionLocked(StateCapturing); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	img, err := s.camera.Capture(ctx)
	if err != nil {
		return nil, s.fail(StateCameraActive, ClassifyCameraError(err))
	}
	return s.finish(ctx, img, products, StateCameraActive)
}

// StopCamera releases the device and returns to ready.
func (s *Scanner) StopCamera() error {
	s.mu.Lock()
	on := s.cameraOn
	s.cameraOn = false
	if s.state != StateIdle && s.state != StateLibrariesLoading {
		s.state = StateReady
	}
	s.mu.Unlock()

	if !on {
		return nil
	}
	return s.camera.Stop()
}

// Reset clears the last outcome. A running camera keeps running.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	switch {
	case s.cameraOn:
		s.state = StateCameraActive
	case s.state != StateIdle && s.state != StateLibrariesLoading:
		s.state = StateReady
	}
}

// finish decodes and matches; a decode failure is a notFound outcome with
// the error attached, a cancelled context goes back to onCancel.
func (s *Scanner) finish(ctx context.Context, img image.Image, products []model.Product, onCancel State) (*Outcome, error) {
	res, err := s.chain.Decode(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.fail(onCancel, err)
		}
		return nil, s.fail(StateNotFound, err)
	}

	out := &Outcome{Result: res, Product: MatchProduct(products, res.Text)}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	if out.Product != nil {
		s.state = StateProductFound
	} else {
		s.state = StateNotFound
	}
	return out, nil
}
