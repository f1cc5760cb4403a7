package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// replyKeyboard renders button label rows into a resizable reply keyboard.
func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	keyboardRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		keyboardRows = append(keyboardRows, buttons)
	}
	keyboard := tgbotapi.NewReplyKeyboard(keyboardRows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}
