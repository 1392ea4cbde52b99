package tgbot

import "embed"

//go:embed migrations
var MigrationsFS embed.FS
