package api

import (
	"context"
	"strings"

	"github.com/slack-go/slack"
)

// SlackClient is the part of the Slack Web API the bot uses.
type SlackClient interface {
	OpenConversationContext(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
}

// Dispatcher handles one interaction after it has been acknowledged.
type Dispatcher interface {
	HandleInteraction(ctx context.Context, cb slack.InteractionCallback) error
}

// PromptRef locates a posted prompt so it can be edited later.
type PromptRef struct {
	ChannelID string
	Timestamp string
}

func (r PromptRef) IsZero() bool { return r.ChannelID == "" || r.Timestamp == "" }

// Encode packs the reference into modal private metadata.
func (r PromptRef) Encode() string {
	if r.IsZero() {
		return ""
	}
	return r.ChannelID + promptRefSeparator + r.Timestamp
}

func DecodePromptRef(s string) PromptRef {
	channel, ts, ok := strings.Cut(s, promptRefSeparator)
	if !ok {
		return PromptRef{}
	}
	return PromptRef{ChannelID: channel, Timestamp: ts}
}
