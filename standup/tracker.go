package standup

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store is the append-only tabular store holding one row per submission.
// Rows returns every row including the header at index 0.
type Store interface {
	Rows(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, row []string) error
}

// Tracker answers whether a user already submitted on a given day.
type Tracker struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

func NewTracker(store Store, loc *time.Location) *Tracker {
	return &Tracker{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) Location() *time.Location { return t.loc }

func (t *Tracker) Now() time.Time { return t.now().In(t.loc) }

// Today is the current date string in the tracker's timezone.
func (t *Tracker) Today() string {
	return t.Now().Format(DateLayout)
}

// HasSubmittedToday reports whether a row for username exists with today's
// date. Matching is exact: no trimming or case folding.
func (t *Tracker) HasSubmittedToday(ctx context.Context, username string) (bool, error) {
	return t.HasSubmitted(ctx, t.Today(), username)
}

func (t *Tracker) HasSubmitted(ctx context.Context, date, username string) (bool, error) {
	if username == "" {
		return false, errors.New("HasSubmitted: username is empty")
	}
	rows, err := t.store.Rows(ctx)
	if err != nil {
		return false, fmt.Errorf("HasSubmitted: failed to read submissions: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > ColUsername && row[ColDate] == date && row[ColUsername] == username {
			return true, nil
		}
	}
	return false, nil
}

// RecordsOn returns every submission stored for date, in store order.
func (t *Tracker) RecordsOn(ctx context.Context, date string) ([]Record, error) {
	rows, err := t.store.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("RecordsOn: failed to read submissions: %w", err)
	}
	var records []Record
	for i, row := range rows {
		if i == 0 || len(row) <= ColUsername || row[ColDate] != date {
			continue
		}
		records = append(records, RecordFromRow(row))
	}
	return records, nil
}
