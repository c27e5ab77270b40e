package session

import "codeberg.org/mutker/droidmon/internal/errors"

const (
	// ErrNotConnected means no device is attached.
	ErrNotConnected = errors.ErrorCode("device_not_connected")
	// ErrWriteRejected means the device accepted the command but refused
	// the write.
	ErrWriteRejected = errors.ErrorCode("write_rejected")
)
