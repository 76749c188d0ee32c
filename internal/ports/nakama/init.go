package nakama

import (
	"context"
	"database/sql"

	"wolfbot/internal/app"
	"wolfbot/internal/bot"
	"wolfbot/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	gameConfigPath  = "data/game_config.json"
	botIdentityPath  = "data/bot_identities.json"
)

// InitModule wires RPCs, hooks and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("Failed to load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		overlaid, err := config.WithEnv(cfg, env)
		if err != nil {
			logger.Warn("Ignoring runtime env overrides: %v", err)
		} else {
			cfg = overlaid
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid game config: %v", err)
		return err
	}

	roster, err := bot.LoadRoster(botIdentityPath)
	if err != nil {
		logger.Warn("Failed to load bot identities, bots will use generated names: %v", err)
		roster = bot.NewRoster(nil)
	}
	if cfg.BotsEnabled {
		ready := roster.Provision(ctx, nk, logger)
		logger.Info("ProvisionBots: %d of %d bot accounts ready.", ready, roster.Len())
	}

	deps := &Deps{
		Config:        cfg,
		Penalties:     NewNakamaPenaltyAdapter(nk),
		Subscriptions: NewNakamaSubscriptionAdapter(nk),
		Notifier:      NewNakamaNotifierAdapter(nk, logger),
		Tickets:       app.NewTicketService(cfg.TicketSecret, cfg.TicketIssuer, cfg.TicketTTL()),
		Roster:        roster,
	}
	if !deps.Tickets.Enabled() {
		logger.Warn("Ticket secret not set, match joins are not ticket-checked.")
	}

	module := NewModule(deps)
	if err := module.RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(module.AfterAuthenticateDevice); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameWolfbot, NewMatch(deps)); err != nil {
		return err
	}

	logger.Info("Wolfbot Go module loaded.")
	return nil
}
