// Package bot owns the gateway session lifecycle: it connects with retry,
// attaches the interaction router, publishes the command set once the
// session is open, and shuts down gracefully.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/command"
	"github.com/haasonsaas/slashkit/pkg/router"
	"github.com/haasonsaas/slashkit/pkg/sync"
)

// Session is the slice of discordgo the bot drives. *discordgo.Session
// satisfies it; tests substitute a mock.
type Session interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Config holds configuration for the bot.
type Config struct {
	// Token is the bot token from the developer portal (required).
	Token string

	// Intents requested at identify time. Slash commands need none
	// beyond the default guilds intent.
	Intents discordgo.Intent

	// MaxConnectAttempts bounds connection retries.
	MaxConnectAttempts int

	// ConnectBackoff caps the exponential retry backoff.
	ConnectBackoff time.Duration

	// Router receives interaction events (required).
	Router *router.Router

	// Syncer publishes the command set after connecting (optional).
	Syncer *sync.Syncer

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.Token == "" {
		return command.ErrConfig("token is required", nil)
	}
	if c.Router == nil {
		return command.ErrConfig("router is required", nil)
	}
	if c.Intents == 0 {
		c.Intents = discordgo.IntentsGuilds
	}
	if c.MaxConnectAttempts == 0 {
		c.MaxConnectAttempts = 5
	}
	if c.ConnectBackoff == 0 {
		c.ConnectBackoff = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Bot wraps a gateway session around a router and syncer.
type Bot struct {
	config  Config
	session Session
	logger  *slog.Logger
}

// New creates a bot for the given configuration.
func New(config Config) (*Bot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Bot{
		config: config,
		logger: config.Logger.With("component", "bot"),
	}, nil
}

// SetSession injects a session, for tests or custom session construction.
// Must be called before Start.
func (b *Bot) SetSession(s Session) {
	b.session = s
}

// Start opens the gateway connection and publishes the command set. It
// returns once the session is open; events are handled on the session's
// goroutines until Stop.
func (b *Bot) Start(ctx context.Context) error {
	if b.session == nil {
		dg, err := discordgo.New("Bot " + b.config.Token)
		if err != nil {
			return command.ErrAuthentication("failed to create session", err)
		}
		dg.Identify.Intents = b.config.Intents
		b.session = dg
	}

	b.session.AddHandler(b.config.Router.Handle)
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleDisconnect)

	if err := b.connectWithRetry(ctx); err != nil {
		return command.ErrConnection("failed to connect to gateway", err)
	}
	b.logger.Info("gateway connected")

	if b.config.Syncer != nil {
		if err := b.config.Syncer.Sync(ctx, b.session); err != nil {
			return err
		}
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop(ctx context.Context) error {
	if b.session == nil {
		return nil
	}
	if err := b.session.Close(); err != nil {
		b.logger.Error("failed to close session", "error", err)
		return command.ErrConnection("failed to close session", err)
	}
	b.logger.Info("gateway closed")
	return nil
}

func (b *Bot) connectWithRetry(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < b.config.MaxConnectAttempts; attempt++ {
		b.logger.Info("connecting to gateway",
			"attempt", attempt+1,
			"max_attempts", b.config.MaxConnectAttempts)

		if err = b.session.Open(); err == nil {
			return nil
		}

		backoff := calculateBackoff(attempt, b.config.ConnectBackoff)
		b.logger.Warn("connection failed, retrying",
			"error", err,
			"backoff_ms", backoff.Milliseconds())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("session ready",
		"user", r.User.Username,
		"guilds", len(r.Guilds))
}

func (b *Bot) handleDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	// discordgo reconnects on its own; this is for visibility.
	b.logger.Warn("gateway disconnected")
}

// calculateBackoff returns exponential backoff capped at maxWait.
func calculateBackoff(attempt int, maxWait time.Duration) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > maxWait {
		backoff = maxWait
	}
	return backoff
}
