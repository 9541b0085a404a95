package interfaces

import "time"

// -----------------------------------------------------------------------------
// IClock abstracts time so the sync controller's timers can be driven in tests.
// -----------------------------------------------------------------------------

type IClock interface {
	Now() time.Time

	// AfterFunc runs f once after d. The returned func stops the timer.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}
