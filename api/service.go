package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier talks to Slack on behalf of the bot.
type Notifier struct {
	client   SlackClient
	deadline string
}

func NewNotifier(client SlackClient, deadline string) *Notifier {
	return &Notifier{client: client, deadline: deadline}
}

// SendPrompt opens a DM with the user and posts the standup prompt. Every
// call posts a new message.
func (n *Notifier) SendPrompt(ctx context.Context, userID string) (PromptRef, error) {
	channelID, err := n.openDM(ctx, userID)
	if err != nil {
		return PromptRef{}, fmt.Errorf("SendPrompt: %w", err)
	}

	channel, ts, err := n.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(promptFallbackText, false),
		slack.MsgOptionBlocks(promptBlocks(n.deadline)...),
	)
	if err != nil {
		return PromptRef{}, fmt.Errorf("SendPrompt: failed to post prompt to %s: %w", userID, err)
	}
	return PromptRef{ChannelID: channel, Timestamp: ts}, nil
}

// MarkSubmitted replaces the prompt's button with the submitted notice.
func (n *Notifier) MarkSubmitted(ctx context.Context, ref PromptRef) error {
	if ref.IsZero() {
		return errors.New("MarkSubmitted: empty prompt reference")
	}
	_, _, _, err := n.client.UpdateMessageContext(ctx, ref.ChannelID, ref.Timestamp,
		slack.MsgOptionText(promptFallbackText, false),
		slack.MsgOptionBlocks(submittedBlocks()...),
	)
	if err != nil {
		return fmt.Errorf("MarkSubmitted: failed to update %s/%s: %w", ref.ChannelID, ref.Timestamp, err)
	}
	return nil
}

// OpenForm shows the standup modal for the interaction behind triggerID.
func (n *Notifier) OpenForm(ctx context.Context, triggerID string, ref PromptRef) error {
	if triggerID == "" {
		return errors.New("OpenForm: missing trigger id")
	}
	if _, err := n.client.OpenViewContext(ctx, triggerID, formView(ref)); err != nil {
		return fmt.Errorf("OpenForm: failed to open modal: %w", err)
	}
	return nil
}

// SendDM posts plain text to the user's DM channel.
func (n *Notifier) SendDM(ctx context.Context, userID, text string) error {
	channelID, err := n.openDM(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendDM: %w", err)
	}
	return n.PostMessage(ctx, channelID, text)
}

func (n *Notifier) PostMessage(ctx context.Context, channelID, text string) error {
	if _, _, err := n.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("PostMessage: failed to post to %s: %w", channelID, err)
	}
	return nil
}

// Username resolves a Slack user id to the handle stored in submissions.
func (n *Notifier) Username(ctx context.Context, userID string) (string, error) {
	user, err := n.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("Username: failed to look up %s: %w", userID, err)
	}
	if user.Name == "" {
		return "", fmt.Errorf("Username: user %s has no name", userID)
	}
	return user.Name, nil
}

func (n *Notifier) openDM(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	ch, _, _, err := n.client.OpenConversationContext(ctx, &slack.OpenConversationParameters{Users: []string{userID}})
	if err != nil {
		return "", fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	return ch.ID, nil
}
