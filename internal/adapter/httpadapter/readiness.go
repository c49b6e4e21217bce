package httpadapter

import (
	"context"
	"errors"
	"sync/atomic"
)

// upstreamReadiness reports not ready while the most recent upstream fetch
// failed. It starts out ready.
type upstreamReadiness struct {
	lastFailure atomic.Pointer[string]
}

func (u *upstreamReadiness) observe(failure error) {
	if failure == nil {
		u.lastFailure.Store(nil)
		return
	}
	msg := failure.Error()
	u.lastFailure.Store(&msg)
}

// CheckReadiness implements sharedobs.ReadinessChecker.
func (u *upstreamReadiness) CheckReadiness(_ context.Context) error {
	if msg := u.lastFailure.Load(); msg != nil {
		return errors.New("last upstream fetch failed: " + *msg)
	}
	return nil
}
