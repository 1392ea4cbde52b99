package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleBalance shows the four category balances and recent activity.
func (h *Handler) HandleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	w, err := h.ledger.GetOrCreateWallet(ctx, userID)
	if err != nil {
		slog.Error("get wallet", "error", err, "user_id", userID)
		return
	}

	var sb strings.Builder
	sb.WriteString("Your balances:\n")
	for _, cat := range domain.Categories {
		fmt.Fprintf(&sb, "  %s: %d credits\n", cat, w.Balance(cat))
	}

	txs, err := h.ledger.Transactions(ctx, userID, 5)
	if err == nil && len(txs) > 0 {
		sb.WriteString("\nRecent transactions:\n")
		for _, tx := range txs {
			sign := "+"
			if tx.TxType.Debit() {
				sign = "-"
			}
			fmt.Fprintf(&sb, "  %s%d %s (%s) — %s\n",
				sign, tx.Amount, tx.Category, tx.TxType, tx.Description)
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()})
}

// HandleModels lists the configured slugs with their prices.
func (h *Handler) HandleModels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, slug := range h.registry.Slugs() {
		cat, err := h.registry.Category(slug)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %s (%s) — %d credits\n", slug, cat, h.pricing.FlatPrice(slug))
	}
	sb.WriteString("\nUse /gen <model> <prompt>.")

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}
