package scheduler

import (
	"context"
	"fmt"
	"strings"

	"StandupBot/standup"

	"github.com/inconshreveable/log15"
)

type SummarySource interface {
	Today() string
	RecordsOn(ctx context.Context, date string) ([]standup.Record, error)
}

type SummaryPoster interface {
	PostMessage(ctx context.Context, channelID, text string) error
	Username(ctx context.Context, userID string) (string, error)
}

// Summarizer posts today's standups and the members still missing to a
// channel.
type Summarizer struct {
	source  SummarySource
	poster  SummaryPoster
	members []string
	channel string
	log     log15.Logger
}

func NewSummarizer(source SummarySource, poster SummaryPoster, members []string, channel string, log log15.Logger) *Summarizer {
	return &Summarizer{source: source, poster: poster, members: members, channel: channel, log: log}
}

func (s *Summarizer) Run(ctx context.Context) error {
	date := s.source.Today()
	records, err := s.source.RecordsOn(ctx, date)
	if err != nil {
		return fmt.Errorf("Summarizer.Run: %w", err)
	}

	submitted := make(map[string]bool, len(records))
	for _, r := range records {
		submitted[r.Username] = true
	}

	var missing []string
	for _, userID := range s.members {
		// Rows saved without a resolvable name carry the user id instead.
		if submitted[userID] {
			continue
		}
		name, err := s.poster.Username(ctx, userID)
		if err != nil {
			s.log.Warn("could not resolve member for summary", "user", userID, "err", err)
		}
		if name == "" || !submitted[name] {
			missing = append(missing, userID)
		}
	}

	if err := s.poster.PostMessage(ctx, s.channel, FormatSummary(date, records, missing)); err != nil {
		return fmt.Errorf("Summarizer.Run: %w", err)
	}
	s.log.Info("standup summary posted", "date", date, "submitted", len(records), "missing", len(missing))
	return nil
}

func FormatSummary(date string, records []standup.Record, missing []string) string {
	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("*Team Daily Standup Summary for %s*\n", date))

	if len(records) == 0 {
		summary.WriteString("\nNo standups submitted yet.\n")
	}
	for _, r := range records {
		summary.WriteString(fmt.Sprintf("\n• *%s* (%s)\n", r.Username, r.Time))
		summary.WriteString(fmt.Sprintf("   - Yesterday: %s\n", r.Answers.Yesterday))
		summary.WriteString(fmt.Sprintf("   - Today: %s\n", r.Answers.Today))
		summary.WriteString(fmt.Sprintf("   - Blockers: %s\n", r.Answers.Blockers))
	}

	if len(missing) > 0 {
		mentions := make([]string, len(missing))
		for i, id := range missing {
			mentions[i] = fmt.Sprintf("<@%s>", id)
		}
		summary.WriteString("\nStill waiting on: " + strings.Join(mentions, ", ") + "\n")
	}
	return summary.String()
}
