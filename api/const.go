package api

const (
	OpenFormActionID = "open_standup_modal"
	FormCallbackID   = "standup_modal"
	AnswerActionID   = "value"

	YesterdayBlockID = "yesterday"
	TodayBlockID     = "today"
	BlockersBlockID  = "blockers"

	promptActionsBlockID = "standup_actions"

	promptFallbackText   = "🧍 Daily Standup"
	promptMessage        = "*🧍 Daily Standup*\nPlease submit before %s"
	submittedMessage     = "*🧍 Daily Standup*\n✅ You've already submitted today's standup. See you tomorrow!"
	duplicateMessage     = "Looks like you've already sent your standup today, so I didn't record this one."
	saveFailedMessage    = "Sorry, I couldn't save your standup right now. Please let your team lead know."
	fillButtonText       = "Fill Standup"
	formTitle            = "Daily Standup"
	formSubmitText       = "Submit"
	formCloseText        = "Cancel"
	promptRefSeparator   = "|"
	healthMessage        = "✅ StandupBot is alive"
	signatureFailMessage = "Invalid Slack signature"
)
