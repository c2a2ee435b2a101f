package api

import (
	"fmt"
	"strings"

	"StandupBot/standup"

	"github.com/slack-go/slack"
)

func plainText(s string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, s, false, false)
}

func markdown(s string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, s, false, false)
}

func promptBlocks(deadline string) []slack.Block {
	button := slack.NewButtonBlockElement(OpenFormActionID, "open", plainText(fillButtonText)).
		WithStyle(slack.StylePrimary)

	return []slack.Block{
		slack.NewSectionBlock(markdown(fmt.Sprintf(promptMessage, deadline)), nil, nil),
		slack.NewActionBlock(promptActionsBlockID, button),
	}
}

func submittedBlocks() []slack.Block {
	return []slack.Block{slack.NewSectionBlock(markdown(submittedMessage), nil, nil)}
}

func answerInput(blockID, label string) *slack.InputBlock {
	el := slack.NewPlainTextInputBlockElement(nil, AnswerActionID)
	el.Multiline = true
	return slack.NewInputBlock(blockID, plainText(label), nil, el)
}

// formView is the standup modal. The prompt it was opened from rides along
// in the private metadata so the submit handler can update it.
func formView(ref PromptRef) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      FormCallbackID,
		Title:           plainText(formTitle),
		Submit:          plainText(formSubmitText),
		Close:           plainText(formCloseText),
		PrivateMetadata: ref.Encode(),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			answerInput(YesterdayBlockID, "Yesterday"),
			answerInput(TodayBlockID, "Today"),
			answerInput(BlockersBlockID, "Blockers"),
		}},
	}
}

// AnswersFromView reads the three answers out of a submitted modal.
func AnswersFromView(view slack.View) (standup.Answers, error) {
	if view.State == nil {
		return standup.Answers{}, fmt.Errorf("AnswersFromView: view %s has no state", view.ID)
	}

	var missing []string
	value := func(blockID string) string {
		v, ok := view.State.Values[blockID][AnswerActionID]
		if !ok {
			missing = append(missing, blockID)
		}
		return v.Value
	}
	answers := standup.Answers{
		Yesterday: value(YesterdayBlockID),
		Today:     value(TodayBlockID),
		Blockers:  value(BlockersBlockID),
	}
	if len(missing) > 0 {
		return standup.Answers{}, fmt.Errorf("AnswersFromView: missing fields %s", strings.Join(missing, ", "))
	}
	return answers, nil
}
