package scheduler

import (
	"context"
	"fmt"
	"time"

	"StandupBot/api"
	"StandupBot/db"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type Prompter interface {
	SendPrompt(ctx context.Context, userID string) (api.PromptRef, error)
}

// DeliverySink stores the outcome of a broadcast run.
type DeliverySink interface {
	Save(ctx context.Context, deliveries []db.PromptDelivery) error
}

type Delivery struct {
	UserID string
	Ref    api.PromptRef
	Err    error
	SentAt time.Time
}

// Result describes one broadcast run. Deliveries are in member order.
type Result struct {
	RunID      string
	StartedAt  time.Time
	Deliveries []Delivery
}

// Err combines every failed delivery, or nil when all succeeded.
func (r Result) Err() error {
	var err error
	for _, d := range r.Deliveries {
		if d.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", d.UserID, d.Err))
		}
	}
	return err
}

func (r Result) Failed() int {
	return len(multierr.Errors(r.Err()))
}

func (r Result) Records() []db.PromptDelivery {
	out := make([]db.PromptDelivery, 0, len(r.Deliveries))
	for _, d := range r.Deliveries {
		rec := db.PromptDelivery{
			RunID:     r.RunID,
			UserID:    d.UserID,
			ChannelID: d.Ref.ChannelID,
			MessageTs: d.Ref.Timestamp,
			SentAt:    d.SentAt,
		}
		if d.Err != nil {
			rec.Error = d.Err.Error()
		}
		out = append(out, rec)
	}
	return out
}

// Broadcaster prompts every member independently: one failure is recorded
// against that member and the rest still get their prompt.
type Broadcaster struct {
	prompter    Prompter
	concurrency int
	log         log15.Logger
	now         func() time.Time
}

func NewBroadcaster(prompter Prompter, concurrency int, log log15.Logger) *Broadcaster {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Broadcaster{prompter: prompter, concurrency: concurrency, log: log, now: time.Now}
}

func (b *Broadcaster) Run(ctx context.Context, members []string) Result {
	res := Result{
		RunID:      uuid.NewString(),
		StartedAt:  b.now().UTC(),
		Deliveries: make([]Delivery, len(members)),
	}

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, userID := range members {
		g.Go(func() error {
			res.Deliveries[i] = b.deliver(ctx, userID)
			return nil
		})
	}
	_ = g.Wait()

	log := b.log.New("run", res.RunID)
	for _, d := range res.Deliveries {
		if d.Err != nil {
			log.Error("failed to send standup prompt", "user", d.UserID, "err", d.Err)
		}
	}
	log.Info("standup broadcast finished", "members", len(members), "failed", res.Failed())
	return res
}

func (b *Broadcaster) deliver(ctx context.Context, userID string) (d Delivery) {
	d = Delivery{UserID: userID, SentAt: b.now().UTC()}
	defer func() {
		if r := recover(); r != nil {
			d.Err = fmt.Errorf("panic while prompting: %v", r)
		}
	}()
	d.Ref, d.Err = b.prompter.SendPrompt(ctx, userID)
	return d
}

// BroadcastJob prompts members and hands the result to sink when one is
// configured.
func BroadcastJob(b *Broadcaster, members []string, sink DeliverySink, log log15.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		res := b.Run(ctx, members)
		if sink == nil {
			return
		}
		if err := sink.Save(ctx, res.Records()); err != nil {
			log.Error("failed to store broadcast deliveries", "run", res.RunID, "err", err)
		}
	}
}
