package scanner

import (
	"context"
	"errors"
	"image"
	"strings"
)

// Camera is a capture device. Implementations wrap whatever the platform
// provides (a webcam, a phone bridge, a directory of frames in tests).
type Camera interface {
	// SecureContext reports whether the platform allows camera access at all.
	SecureContext() bool
	HasCamera(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
	// Ready reports whether frames can be captured yet.
	Ready() bool
	Capture(ctx context.Context) (image.Image, error)
	Stop() error
}

type CameraErrorCode string

const (
	CameraPermissionDenied CameraErrorCode = "permission_denied"
	CameraNoDevice         CameraErrorCode = "no_device"
	CameraInUse            CameraErrorCode = "in_use"
	CameraOverconstrained  CameraErrorCode = "overconstrained"
	CameraInsecureContext  CameraErrorCode = "insecure_context"
	CameraTimeout          CameraErrorCode = "timeout"
	CameraUnknown          CameraErrorCode = "unknown"
)

var cameraMessages = map[CameraErrorCode]string{
	CameraPermissionDenied: "Camera permission was denied. Allow camera access and try again.",
	CameraNoDevice:         "No camera was found on this device.",
	CameraInUse:            "The camera is being used by another application.",
	CameraOverconstrained:  "The camera does not support the requested settings.",
	CameraInsecureContext:  "The camera is only available over HTTPS or on localhost.",
	CameraTimeout:          "The camera did not become ready in time.",
	CameraUnknown:          "The camera could not be started.",
}

type CameraError struct {
	Code CameraErrorCode
	Err  error
}

func NewCameraError(code CameraErrorCode, err error) *CameraError {
	return &CameraError{Code: code, Err: err}
}

func (e *CameraError) Error() string {
	if e.Err != nil {
		return "camera " + string(e.Code) + ": " + e.Err.Error()
	}
	return "camera " + string(e.Code)
}

func (e *CameraError) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *CameraError) Message() string {
	return cameraMessages[e.Code]
}

// ClassifyCameraError maps an arbitrary camera failure to a code. Typed errors
// win; matching on the native error names is the fallback for drivers that
// only return strings.
func ClassifyCameraError(err error) *CameraError {
	if err == nil {
		return nil
	}
	var ce *CameraError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewCameraError(CameraTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "notallowederror", "permissiondenied", "permission denied"):
		return NewCameraError(CameraPermissionDenied, err)
	case containsAny(msg, "notfounderror", "devicesnotfounderror", "no camera", "requested device not found"):
		return NewCameraError(CameraNoDevice, err)
	case containsAny(msg, "notreadableerror", "trackstarterror", "in use", "could not start video source"):
		return NewCameraError(CameraInUse, err)
	case containsAny(msg, "overconstrainederror", "constraint"):
		return NewCameraError(CameraOverconstrained, err)
	case containsAny(msg, "securityerror", "secure context", "insecure"):
		return NewCameraError(CameraInsecureContext, err)
	case containsAny(msg, "timeout", "timed out"):
		return NewCameraError(CameraTimeout, err)
	default:
		return NewCameraError(CameraUnknown, err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
