package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/router"
	tg "github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/telegram"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleText treats a plain private message as a prompt for the
// default text model.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	h.generate(ctx, b, update, config.DefaultTextSlug, update.Message.Text)
}

// HandleGen handles "/gen <model> <prompt>".
func (h *Handler) HandleGen(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.SplitN(strings.TrimSpace(update.Message.Text), " ", 3)
	if len(fields) < 3 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /gen <model> <prompt>. See /models.",
		})
		return
	}
	h.generate(ctx, b, update, fields[1], fields[2])
}

func (h *Handler) generate(ctx context.Context, b *bot.Bot, update *models.Update, slug, prompt string) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	category, err := h.registry.Category(slug)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Unknown model. See /models.",
		})
		return
	}

	stopTyping := tg.StartTyping(ctx, b, chatID, category)
	defer stopTyping()

	req, err := h.router.Generate(ctx, router.GenerateParams{
		UserID:   userID,
		Slug:     slug,
		Prompt:   prompt,
		Settings: defaultSettings(category),
	})
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   failureMessage(err),
		})
		return
	}

	replyTo := update.Message.ID
	if req.ResultContent != "" {
		if err := tg.SendLongMessage(ctx, b, chatID, req.ResultContent, &replyTo); err != nil {
			slog.Error("send result", "error", err, "request_id", req.ID)
		}
	}
	if req.ResultFileURL != "" {
		if err := tg.SendResultFile(ctx, b, chatID, req.Category, req.ResultFileURL); err != nil {
			slog.Error("send result file", "error", err, "request_id", req.ID)
		}
	}
}

func defaultSettings(category domain.Category) *domain.GenerationSettings {
	switch category {
	case domain.CategoryText:
		s := domain.DefaultTextSettings()
		return &domain.GenerationSettings{Text: &s}
	case domain.CategoryImage:
		s := domain.DefaultImageSettings()
		return &domain.GenerationSettings{Image: &s}
	case domain.CategoryVideo:
		s := domain.DefaultVideoSettings()
		return &domain.GenerationSettings{Video: &s}
	case domain.CategoryAudio:
		s := domain.DefaultAudioSettings()
		return &domain.GenerationSettings{Audio: &s}
	}
	return nil
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "Not enough credits for this model. Check /balance."
	case errors.Is(err, domain.ErrUnknownModel):
		return "Unknown model. See /models."
	case errors.Is(err, domain.ErrAllProvidersFailed):
		return "All providers are busy right now. Your credits were refunded — please try again."
	default:
		return "Generation failed. Your credits were refunded."
	}
}
