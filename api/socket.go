package api

import (
	"context"

	"github.com/inconshreveable/log15"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// SocketListener receives interactions over Socket Mode, so the bot needs
// no public URL.
type SocketListener struct {
	client  *socketmode.Client
	ack     func(socketmode.Request)
	handler Dispatcher
	log     log15.Logger
}

// NewSocketListener wraps an API client created with
// slack.OptionAppLevelToken.
func NewSocketListener(api *slack.Client, handler Dispatcher, log log15.Logger) *SocketListener {
	client := socketmode.New(api)
	return &SocketListener{
		client:  client,
		ack:     func(req socketmode.Request) { client.Ack(req) },
		handler: handler,
		log:     log,
	}
}

// Run blocks until ctx is cancelled or the connection fails for good.
func (l *SocketListener) Run(ctx context.Context) error {
	go l.consume(ctx)
	return l.client.RunContext(ctx)
}

func (l *SocketListener) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-l.client.Events:
			if !ok {
				return
			}
			l.handle(evt)
		}
	}
}

func (l *SocketListener) handle(evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		l.log.Info("connecting to Slack with Socket Mode")
	case socketmode.EventTypeConnected:
		l.log.Info("connected to Slack with Socket Mode")
	case socketmode.EventTypeConnectionError:
		l.log.Warn("socket mode connection failed, retrying")
	case socketmode.EventTypeInteractive:
		cb, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			l.log.Warn("unexpected interactive payload", "data", evt.Data)
			return
		}
		// Slack retries unacked envelopes after 3s; ack before any work.
		if evt.Request != nil {
			l.ack(*evt.Request)
		}
		go Dispatch(l.handler, cb, l.log)
	default:
		if evt.Request != nil {
			l.ack(*evt.Request)
		}
	}
}
