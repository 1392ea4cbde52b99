package handler

import (
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/ledger"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/pricing"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/registry"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/router"
	"github.com/go-telegram/bot"
)

// Handler holds the dependencies of the bot-facing entry points.
type Handler struct {
	bot      *bot.Bot
	cfg      *config.Config
	registry *registry.Registry
	pricing  *pricing.Calculator
	ledger   *ledger.Service
	router   *router.Router
}

// Deps contains everything required to construct a Handler.
type Deps struct {
	Bot      *bot.Bot
	Cfg      *config.Config
	Registry *registry.Registry
	Pricing  *pricing.Calculator
	Ledger   *ledger.Service
	Router   *router.Router
}

func New(deps Deps) *Handler {
	return &Handler{
		bot:      deps.Bot,
		cfg:      deps.Cfg,
		registry: deps.Registry,
		pricing:  deps.Pricing,
		ledger:   deps.Ledger,
		router:   deps.Router,
	}
}

// Register wires the command handlers.
func (h *Handler) Register() {
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.HandleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/balance", bot.MatchTypeExact, h.HandleBalance)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/models", bot.MatchTypeExact, h.HandleModels)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/gen", bot.MatchTypePrefix, h.HandleGen)
}
