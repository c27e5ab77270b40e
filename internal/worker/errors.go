package worker

import "codeberg.org/mutker/droidmon/internal/errors"

const (
	// ErrPoolClosed is returned by Submit after Shutdown.
	ErrPoolClosed = errors.ErrorCode("pool_closed")
	// ErrSchedulerStopped is returned when scheduling on a stopped Scheduler.
	ErrSchedulerStopped = errors.ErrorCode("scheduler_stopped")
	// ErrDuplicateSchedule means a schedule with the same name is active.
	ErrDuplicateSchedule = errors.ErrorCode("duplicate_schedule")
)
