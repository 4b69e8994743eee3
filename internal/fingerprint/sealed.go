package fingerprint

import (
	"sync/atomic"

	"github.com/autumndb/autumndb/internal/dberrors"
)

// sealable is the systems-language replacement for the reference
// implementation's Frozen mixin (spec §9): a builder starts Open, and
// Seal moves it to Sealed. Any mutator called after Seal must return
// dberrors.ErrFrozenMutation instead of silently discarding the call or
// panicking.
type sealable struct {
	sealed atomic.Bool
}

func (s *sealable) checkOpen() error {
	if s.sealed.Load() {
		return dberrors.ErrFrozenMutation
	}

	return nil
}

func (s *sealable) seal() {
	s.sealed.Store(true)
}
