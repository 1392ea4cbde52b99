package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// SendLongMessage sends a potentially long message, splitting it into
// parts under Telegram's length limit.
func SendLongMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, replyToID *int) error {
	parts := SplitMessage(text, config.MaxTelegramMessageLen)

	for _, part := range parts {
		params := &bot.SendMessageParams{
			ChatID: chatID,
			Text:   part,
		}
		if replyToID != nil {
			params.ReplyParameters = &models.ReplyParameters{MessageID: *replyToID}
			replyToID = nil // only reply to first part
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// SendResultFile delivers a generated file by its hosted URL, picking
// the send method from the request's category.
func SendResultFile(ctx context.Context, b *bot.Bot, chatID int64, category domain.Category, fileURL string) error {
	var err error
	switch category {
	case domain.CategoryVideo:
		_, err = b.SendVideo(ctx, &bot.SendVideoParams{
			ChatID: chatID,
			Video:  &models.InputFileString{Data: fileURL},
		})
	case domain.CategoryAudio:
		_, err = b.SendAudio(ctx, &bot.SendAudioParams{
			ChatID: chatID,
			Audio:  &models.InputFileString{Data: fileURL},
		})
	default:
		_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID,
			Photo:  &models.InputFileString{Data: fileURL},
		})
	}
	if err != nil {
		// Telegram occasionally refuses remote URLs; fall back to a link.
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fileURL,
		})
	}
	return err
}

// StartTyping sends a chat action every few seconds until the returned
// cancel function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64, category domain.Category) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)

	action := models.ChatActionTyping
	switch category {
	case domain.CategoryImage:
		action = models.ChatActionUploadPhoto
	case domain.CategoryVideo:
		action = models.ChatActionUploadVideo
	case domain.CategoryAudio:
		action = models.ChatActionUploadVoice
	}

	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: action})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: action})
			}
		}
	}()
	return cancel
}

// SplitMessage splits text into chunks of maxLen runes, preferring to
// split at newlines.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if utf8.RuneCountInString(text) <= maxLen {
			parts = append(parts, text)
			break
		}

		runes := []rune(text)
		splitAt := maxLen
		chunk := string(runes[:maxLen])
		if lastNewline := strings.LastIndex(chunk, "\n"); lastNewline > maxLen/2 {
			splitAt = utf8.RuneCountInString(chunk[:lastNewline]) + 1
		}

		parts = append(parts, string(runes[:splitAt]))
		text = string(runes[splitAt:])
	}
	return parts
}
