package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"StandupBot/utils"

	"github.com/inconshreveable/log15"
	"github.com/slack-go/slack"
)

const interactionTimeout = 30 * time.Second

// InteractionServer receives Slack interactivity payloads over HTTP. The
// request is acknowledged before any work happens; processing runs on its
// own goroutine.
type InteractionServer struct {
	handler       Dispatcher
	signingSecret string
	log           log15.Logger
}

func NewInteractionServer(handler Dispatcher, signingSecret string, log log15.Logger) *InteractionServer {
	return &InteractionServer{handler: handler, signingSecret: signingSecret, log: log}
}

func (s *InteractionServer) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Unable to read request body", http.StatusBadRequest)
		return
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		s.log.Warn("rejecting unsigned request", "err", err)
		http.Error(w, signatureFailMessage, http.StatusUnauthorized)
		return
	}
	if _, err := verifier.Write(body); err != nil {
		http.Error(w, signatureFailMessage, http.StatusUnauthorized)
		return
	}
	if err := verifier.Ensure(); err != nil {
		s.log.Warn("rejecting request with bad signature", "err", err)
		http.Error(w, signatureFailMessage, http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(form.Get("payload")), &cb); err != nil {
		http.Error(w, "Invalid interaction payload", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	go Dispatch(s.handler, cb, s.log)
}

// Dispatch handles one interaction with a fresh deadline, logging failures
// and recovering panics.
func Dispatch(handler Dispatcher, cb slack.InteractionCallback, log log15.Logger) {
	utils.Safely(log, string(cb.Type), func() {
		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()
		if err := handler.HandleInteraction(ctx, cb); err != nil {
			log.Error("interaction failed", "type", cb.Type, "user", cb.User.ID, "err", err)
		}
	})
}

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(healthMessage))
}
