package config

import "time"

const (
	// Per-provider attempt timeout inside the fallback loop
	ProviderAttemptTimeout = 120 * time.Second

	// Default credit price for slugs missing a pricing entry
	DefaultCreditsPerUnit = 10

	// Dynamic pricing never scales a request above this multiple of
	// the flat price, whatever duration/resolution the user asks for
	DynamicPriceCapMultiplier = 10

	// Ledger write retry policy for refunds/credits
	LedgerRetryAttempts  = 3
	LedgerRetryBaseDelay = 200 * time.Millisecond

	// Signup bonus granted once per category on /start
	SignupBonusTextCredits  = 100
	SignupBonusImageCredits = 20
	SignupBonusVideoCredits = 10
	SignupBonusAudioCredits = 10

	// Stream client reconnect backoff
	StreamBackoffMin = 1 * time.Second
	StreamBackoffMax = 16 * time.Second

	// WebSocket keepalive
	StreamPingInterval = 30 * time.Second
	StreamWriteTimeout = 10 * time.Second

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Default model slugs used when the user has not picked one
	DefaultTextSlug  = "deepseek-chat"
	DefaultImageSlug = "flux-schnell"
)
