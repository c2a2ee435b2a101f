package standup_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StandupBot/sheets"
	"StandupBot/standup"
	"StandupBot/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordRow(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 4, 30, 5, 0, time.UTC)

	rec := standup.NewRecord("alice", standup.Answers{Yesterday: "y", Today: "t", Blockers: "b"}, now, loc)
	assert.Equal(t, []string{"2024-01-01", "alice", "y", "t", "b", "10:00:05"}, rec.Row())
	assert.Equal(t, rec, standup.RecordFromRow(rec.Row()))
}

func TestRecorderAppends(t *testing.T) {
	store := sheets.NewMemory(header)
	tr := fixedTracker(t, store, "2024-01-01")
	rec := standup.NewRecorder(store, standup.NewScanClaims(tr))

	r := standup.Record{Date: "2024-01-01", Username: "alice", Answers: standup.Answers{Yesterday: "y", Today: "t", Blockers: "b"}, Time: "10:00:00"}
	require.NoError(t, rec.Record(context.Background(), r))

	ok, err := tr.HasSubmittedToday(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecorderRejectsSecondSubmission(t *testing.T) {
	store := sheets.NewMemory(header, []string{"2024-01-01", "alice", "y", "t", "b", "10:00"})
	tr := fixedTracker(t, store, "2024-01-01")
	rec := standup.NewRecorder(store, standup.NewScanClaims(tr))

	err := rec.Record(context.Background(), standup.Record{Date: "2024-01-01", Username: "alice", Time: "11:00:00"})
	assert.ErrorIs(t, err, standup.ErrAlreadySubmitted)
	assert.Equal(t, 2, store.Len())

	// Another day is a new key.
	require.NoError(t, rec.Record(context.Background(), standup.Record{Date: "2024-01-02", Username: "alice", Time: "10:00:00"}))
	assert.Equal(t, 3, store.Len())
}

// Two submissions for the same user that both passed the click-time check
// race into the recorder. Exactly one row must land.
func TestRecorderConcurrentSubmissionsKeepOneRow(t *testing.T) {
	store := sheets.NewMemory(header)
	tr := fixedTracker(t, store, "2024-01-01")
	rec := standup.NewRecorder(store, standup.NewScanClaims(tr))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = rec.Record(context.Background(), standup.Record{Date: "2024-01-01", Username: "alice", Time: "10:00:00"})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, standup.ErrAlreadySubmitted):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
	assert.Equal(t, 2, store.Len())
}

type countingClaims struct {
	mu       sync.Mutex
	taken    map[string]bool
	released int
}

func (c *countingClaims) Claim(_ context.Context, date, username string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taken == nil {
		c.taken = make(map[string]bool)
	}
	if c.taken[date+"|"+username] {
		return false, nil
	}
	c.taken[date+"|"+username] = true
	return true, nil
}

func (c *countingClaims) Release(_ context.Context, date, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.taken, date+"|"+username)
	c.released++
	return nil
}

func TestRecorderReleasesClaimOnAppendFailure(t *testing.T) {
	store := sheets.NewMemory(header)
	store.AppendErr = errors.New("quota exceeded")
	claims := &countingClaims{}
	rec := standup.NewRecorder(store, claims)
	r := standup.Record{Date: "2024-01-01", Username: "alice", Time: "10:00:00"}

	err := rec.Record(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.AppendErr)
	assert.Equal(t, 1, claims.released)

	store.AppendErr = nil
	require.NoError(t, rec.Record(context.Background(), r))
	assert.Equal(t, 2, store.Len())
}

func TestRecorderClaimError(t *testing.T) {
	store := sheets.NewMemory(header)
	store.ReadErr = errors.New("network down")
	tr := fixedTracker(t, store, "2024-01-01")
	rec := standup.NewRecorder(store, standup.NewScanClaims(tr))

	err := rec.Record(context.Background(), standup.Record{Date: "2024-01-01", Username: "alice"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, standup.ErrAlreadySubmitted)
	assert.Equal(t, 1, store.Len())
}

func TestRecorderIncompleteRecord(t *testing.T) {
	rec := standup.NewRecorder(sheets.NewMemory(header), &countingClaims{})
	require.Error(t, rec.Record(context.Background(), standup.Record{Date: "2024-01-01"}))
}

// slowStore appends only after the caller gives up, like a Sheets call that
// outlives the interaction deadline. Rows written by later calls land.
type slowStore struct {
	*sheets.Memory
	mu    sync.Mutex
	stall bool
}

func (s *slowStore) Append(ctx context.Context, row []string) error {
	s.mu.Lock()
	stall := s.stall
	s.mu.Unlock()
	if stall {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.Memory.Append(ctx, row)
}

func TestRecorderReleasesSharedClaimAfterDeadline(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := utils.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store := &slowStore{Memory: sheets.NewMemory(header), stall: true}
	rec := standup.NewRecorder(store, utils.NewRedisClaims(client))
	r := standup.Record{Date: "2024-01-01", Username: "alice", Time: "10:00:00"}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = rec.Record(ctx, r)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "release claim")
	assert.False(t, mr.Exists(utils.ClaimKey("2024-01-01", "alice")), "failed append must free the claim")

	store.mu.Lock()
	store.stall = false
	store.mu.Unlock()
	require.NoError(t, rec.Record(context.Background(), r))
	assert.Equal(t, 2, store.Len())
}

// gatedStore holds appends for one user until the gate opens.
type gatedStore struct {
	*sheets.Memory
	user    string
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedStore) Append(ctx context.Context, row []string) error {
	if row[standup.ColUsername] == g.user {
		close(g.entered)
		<-g.gate
	}
	return g.Memory.Append(ctx, row)
}

func TestRecorderDoesNotBlockOtherUsers(t *testing.T) {
	store := &gatedStore{
		Memory:  sheets.NewMemory(header),
		user:    "alice",
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	rec := standup.NewRecorder(store, &countingClaims{})

	aliceDone := make(chan error, 1)
	go func() {
		aliceDone <- rec.Record(context.Background(), standup.Record{Date: "2024-01-01", Username: "alice", Time: "10:00:00"})
	}()
	<-store.entered

	bobDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		bobDone <- rec.Record(ctx, standup.Record{Date: "2024-01-01", Username: "bob", Time: "10:00:01"})
	}()

	select {
	case err := <-bobDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bob's submission waited on alice's append")
	}

	close(store.gate)
	require.NoError(t, <-aliceDone)
	assert.Equal(t, 3, store.Len())
}
