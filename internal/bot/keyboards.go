package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback identifiers. Opaque strings: Telegram echoes them back verbatim
// when a button is tapped. Snooze data carries the milestone it answers
// ("snooze:1".."snooze:3", "snooze:0" for a manual check-in).
const (
	cbDidWorkout    = "did_workout"
	cbSnoozePrefix  = "snooze:"
	cbFinishWorkout = "finish_workout"
	cbUndoEntry     = "undo_entry"
	cbCancelWorkout = "cancel_workout"
	cbSummaryWeek   = "summary_week"
	cbSummaryMonth  = "summary_month"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("I trained", cbDidWorkout)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("summary_week", cbSummaryWeek)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("summary_month", cbSummaryMonth)),
	)
}

func reminderKeyboard(milestone int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("I trained", cbDidWorkout)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Snooze / Skip", fmt.Sprintf("%s%d", cbSnoozePrefix, milestone))),
	)
}

func draftKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Finish Workout", cbFinishWorkout)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Undo Last Entry", cbUndoEntry)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancelWorkout)),
	)
}
