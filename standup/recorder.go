package standup

import (
	"context"
	"fmt"
	"time"
)

// releaseTimeout bounds the claim release after a failed append. The release
// runs detached from the caller's deadline, which has usually expired by then.
const releaseTimeout = 5 * time.Second

// ClaimStore reserves the (date, username) key ahead of the append. Claim
// returns false when the key is already taken.
type ClaimStore interface {
	Claim(ctx context.Context, date, username string) (bool, error)
	Release(ctx context.Context, date, username string) error
}

// ScanClaims treats the store itself as the claim table: a key is free when
// no row carries it. It is only safe behind the Recorder's per-key lock.
type ScanClaims struct {
	tracker *Tracker
}

func NewScanClaims(tracker *Tracker) *ScanClaims {
	return &ScanClaims{tracker: tracker}
}

func (s *ScanClaims) Claim(ctx context.Context, date, username string) (bool, error) {
	exists, err := s.tracker.HasSubmitted(ctx, date, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *ScanClaims) Release(context.Context, string, string) error { return nil }

// Recorder appends submissions so that at most one row exists per
// (date, username). Check and append for one key run under that key's lock,
// so other users are never held up, and the claim store extends the
// guarantee across processes when it is shared.
type Recorder struct {
	locks  *keyLock
	store  Store
	claims ClaimStore
}

func NewRecorder(store Store, claims ClaimStore) *Recorder {
	return &Recorder{locks: newKeyLock(), store: store, claims: claims}
}

// Record appends rec unless a submission for the same day and user exists,
// in which case it returns ErrAlreadySubmitted and writes nothing.
func (r *Recorder) Record(ctx context.Context, rec Record) error {
	if rec.Username == "" || rec.Date == "" {
		return fmt.Errorf("Record: incomplete record %+v", rec)
	}

	unlock := r.locks.Lock(rec.Date + "|" + rec.Username)
	defer unlock()

	ok, err := r.claims.Claim(ctx, rec.Date, rec.Username)
	if err != nil {
		return fmt.Errorf("Record: failed to claim %s/%s: %w", rec.Date, rec.Username, err)
	}
	if !ok {
		return ErrAlreadySubmitted
	}

	if err := r.store.Append(ctx, rec.Row()); err != nil {
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if relErr := r.claims.Release(relCtx, rec.Date, rec.Username); relErr != nil {
			return fmt.Errorf("Record: failed to append row: %w (release claim: %v)", err, relErr)
		}
		return fmt.Errorf("Record: failed to append row: %w", err)
	}
	return nil
}
