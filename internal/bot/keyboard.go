package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/itinerary_bot/internal/service"
)

func (b *Bot) getStartKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(service.StartKeyword),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// getChoicesKeyboard клавиатура из вариантов ответа в одну строку
func (b *Bot) getChoicesKeyboard(choices []string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(choices))
	for _, choice := range choices {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(choice))
	}

	keyboard := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(buttons...))
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true
	return keyboard
}
