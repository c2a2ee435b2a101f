package api

import (
	"context"
	"errors"
	"fmt"

	"StandupBot/standup"

	"github.com/inconshreveable/log15"
	"github.com/slack-go/slack"
)

// Handler runs the standup flow for button clicks and form submissions.
type Handler struct {
	notifier *Notifier
	tracker  *standup.Tracker
	recorder *standup.Recorder
	log      log15.Logger
}

func NewHandler(notifier *Notifier, tracker *standup.Tracker, recorder *standup.Recorder, log log15.Logger) *Handler {
	return &Handler{notifier: notifier, tracker: tracker, recorder: recorder, log: log}
}

// HandleInteraction routes an acknowledged interaction. Anything that is not
// the standup button or form is ignored.
func (h *Handler) HandleInteraction(ctx context.Context, cb slack.InteractionCallback) error {
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		for _, action := range cb.ActionCallback.BlockActions {
			if action != nil && action.ActionID == OpenFormActionID {
				return h.onOpenClicked(ctx, cb)
			}
		}
	case slack.InteractionTypeViewSubmission:
		if cb.View.CallbackID == FormCallbackID {
			return h.onFormSubmitted(ctx, cb)
		}
	}
	h.log.Debug("ignoring interaction", "type", cb.Type, "user", cb.User.ID)
	return nil
}

func (h *Handler) onOpenClicked(ctx context.Context, cb slack.InteractionCallback) error {
	ref := promptRefFromCallback(cb)
	username := h.username(ctx, cb.User)
	log := h.log.New("user", cb.User.ID, "username", username)

	submitted, err := h.tracker.HasSubmittedToday(ctx, username)
	if err != nil {
		// Status unknown: show the form and let the recorder's claim decide.
		log.Warn("submission check failed, showing form", "err", err)
		submitted = false
	}

	if submitted {
		log.Info("standup already submitted, updating prompt")
		if err := h.notifier.MarkSubmitted(ctx, ref); err != nil {
			return fmt.Errorf("onOpenClicked: %w", err)
		}
		return nil
	}

	if err := h.notifier.OpenForm(ctx, cb.TriggerID, ref); err != nil {
		return fmt.Errorf("onOpenClicked: %w", err)
	}
	log.Debug("standup form opened")
	return nil
}

func (h *Handler) onFormSubmitted(ctx context.Context, cb slack.InteractionCallback) error {
	answers, err := AnswersFromView(cb.View)
	if err != nil {
		return fmt.Errorf("onFormSubmitted: %w", err)
	}

	username := h.username(ctx, cb.User)
	ref := DecodePromptRef(cb.View.PrivateMetadata)
	rec := standup.NewRecord(username, answers, h.tracker.Now(), h.tracker.Location())
	log := h.log.New("user", cb.User.ID, "username", username, "date", rec.Date)

	err = h.recorder.Record(ctx, rec)
	switch {
	case errors.Is(err, standup.ErrAlreadySubmitted):
		log.Warn("duplicate standup rejected")
		if dmErr := h.notifier.SendDM(ctx, cb.User.ID, duplicateMessage); dmErr != nil {
			log.Error("failed to notify duplicate", "err", dmErr)
		}
		h.markPrompt(ctx, ref, log)
		return nil
	case err != nil:
		if dmErr := h.notifier.SendDM(ctx, cb.User.ID, saveFailedMessage); dmErr != nil {
			log.Error("failed to notify save failure", "err", dmErr)
		}
		return fmt.Errorf("onFormSubmitted: %w", err)
	}

	log.Info("standup saved")
	h.markPrompt(ctx, ref, log)
	return nil
}

func (h *Handler) markPrompt(ctx context.Context, ref PromptRef, log log15.Logger) {
	if ref.IsZero() {
		return
	}
	if err := h.notifier.MarkSubmitted(ctx, ref); err != nil {
		log.Warn("failed to update prompt", "err", err)
	}
}

// username prefers the handle in the payload, then users.info, then the id.
func (h *Handler) username(ctx context.Context, user slack.User) string {
	if user.Name != "" {
		return user.Name
	}
	name, err := h.notifier.Username(ctx, user.ID)
	if err != nil {
		h.log.Warn("username lookup failed, using user id", "user", user.ID, "err", err)
		return user.ID
	}
	return name
}

func promptRefFromCallback(cb slack.InteractionCallback) PromptRef {
	ref := PromptRef{ChannelID: cb.Container.ChannelID, Timestamp: cb.Container.MessageTs}
	if ref.IsZero() {
		ref = PromptRef{ChannelID: cb.Channel.ID, Timestamp: cb.Message.Timestamp}
	}
	return ref
}
