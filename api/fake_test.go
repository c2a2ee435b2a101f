package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/slack-go/slack"
)

type postedMessage struct {
	Channel   string
	Timestamp string
	Values    url.Values
}

type fakeSlack struct {
	mu sync.Mutex

	users      map[string]string
	failOpenDM map[string]error
	failUpdate error

	posted  []postedMessage
	updated []postedMessage
	views   []slack.ModalViewRequest
	nextTs  int
}

func newFakeSlack() *fakeSlack {
	return &fakeSlack{users: map[string]string{}, failOpenDM: map[string]error{}}
}

func (f *fakeSlack) OpenConversationContext(_ context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := params.Users[0]
	if err := f.failOpenDM[user]; err != nil {
		return nil, false, false, err
	}
	ch := &slack.Channel{}
	ch.ID = "D" + user
	return ch, false, false, nil
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.test/api/", options...)
	if err != nil {
		return "", "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTs++
	ts := fmt.Sprintf("1700000000.%06d", f.nextTs)
	f.posted = append(f.posted, postedMessage{Channel: channelID, Timestamp: ts, Values: values})
	return channelID, ts, nil
}

func (f *fakeSlack) UpdateMessageContext(_ context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.test/api/", options...)
	if err != nil {
		return "", "", "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return "", "", "", f.failUpdate
	}
	f.updated = append(f.updated, postedMessage{Channel: channelID, Timestamp: timestamp, Values: values})
	return channelID, timestamp, "", nil
}

func (f *fakeSlack) OpenViewContext(_ context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if triggerID == "expired" {
		return nil, errors.New("expired_trigger_id")
	}
	f.views = append(f.views, view)
	return &slack.ViewResponse{}, nil
}

func (f *fakeSlack) GetUserInfoContext(_ context.Context, user string) (*slack.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.users[user]
	if !ok {
		return nil, errors.New("user_not_found")
	}
	return &slack.User{ID: user, Name: name}, nil
}

func (f *fakeSlack) Posted() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.posted...)
}

func (f *fakeSlack) Updated() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.updated...)
}

func (f *fakeSlack) Views() []slack.ModalViewRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]slack.ModalViewRequest(nil), f.views...)
}
