package handler

import (
	"context"
	"log/slog"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleStart creates the user's wallet and grants the one-time signup
// bonus across all categories.
func (h *Handler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	_, err := h.ledger.GetOrCreateWallet(ctx, userID)
	if err != nil {
		slog.Error("get or create wallet", "error", err, "user_id", userID)
		return
	}

	// An empty audit log means a fresh wallet: grant the signup bonus.
	txs, err := h.ledger.Transactions(ctx, userID, 1)
	if err != nil {
		slog.Error("check transactions", "error", err, "user_id", userID)
		return
	}
	if len(txs) == 0 {
		bonuses := map[domain.Category]int64{
			domain.CategoryText:  config.SignupBonusTextCredits,
			domain.CategoryImage: config.SignupBonusImageCredits,
			domain.CategoryVideo: config.SignupBonusVideoCredits,
			domain.CategoryAudio: config.SignupBonusAudioCredits,
		}
		for _, cat := range domain.Categories {
			if _, err := h.ledger.Credit(ctx, userID, cat, bonuses[cat], domain.TxTypeBonus, "signup bonus"); err != nil {
				slog.Error("grant signup bonus", "error", err, "user_id", userID, "category", cat)
			}
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "Welcome! Send me a prompt to generate text, or use:\n" +
			"/gen <model> <prompt> — generate with a specific model\n" +
			"/models — list models and prices\n" +
			"/balance — show your credit balances",
	})
}
