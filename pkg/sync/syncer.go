// Package sync publishes the registered command set to Discord. It groups
// commands by guild scope, bulk-overwrites each group, and remembers a
// checksum of what it published so unchanged sets skip the API round trip.
package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/haasonsaas/slashkit/pkg/command"
	"github.com/haasonsaas/slashkit/pkg/store"
)

// Session is the slice of the Discord session the syncer needs.
// *discordgo.Session satisfies it; tests substitute a mock.
type Session interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Config holds configuration for the syncer.
type Config struct {
	// AppID is the application ID commands are published under (required).
	AppID string

	// Registry supplies the commands to publish (required).
	Registry *command.Registry

	// Store remembers published checksums. Defaults to an in-process store.
	Store store.Store

	// Force publishes even when the checksum matches.
	Force bool

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.AppID == "" {
		return command.ErrConfig("application id is required", nil)
	}
	if c.Registry == nil {
		return command.ErrConfig("registry is required", nil)
	}
	if c.Store == nil {
		c.Store = store.NewMemory()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Syncer publishes command declarations.
type Syncer struct {
	config Config
	logger *slog.Logger
}

// New creates a syncer for the given configuration.
func New(config Config) (*Syncer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Syncer{
		config: config,
		logger: config.Logger.With("component", "sync"),
	}, nil
}

// Sync publishes every registered command, one bulk overwrite per guild
// scope (the empty scope is global). Scopes whose payload checksum matches
// the stored one are skipped unless Force is set.
func (s *Syncer) Sync(ctx context.Context, session Session) error {
	groups := make(map[string][]*discordgo.ApplicationCommand)
	for _, c := range s.config.Registry.List() {
		app := c.ApplicationCommand()
		groups[c.GuildID] = append(groups[c.GuildID], app)
	}

	for guildID, cmds := range groups {
		if err := s.syncGroup(ctx, session, guildID, cmds); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncGroup(ctx context.Context, session Session, guildID string, cmds []*discordgo.ApplicationCommand) error {
	scope := guildID
	if scope == "" {
		scope = "global"
	}
	logger := s.logger.With("scope", scope, "command_count", len(cmds))

	checksum, err := checksumCommands(cmds)
	if err != nil {
		return command.ErrInternal("failed to checksum command payload", err)
	}

	key := fmt.Sprintf("slashkit:commands:%s:%s", s.config.AppID, scope)
	if !s.config.Force {
		stored, err := s.config.Store.Get(ctx, key)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			// A broken store must not block registration.
			logger.Warn("checksum store unavailable, publishing anyway", "error", err)
		}
		if err == nil && stored == checksum {
			logger.Debug("command set unchanged, skipping publish", "checksum", checksum)
			return nil
		}
	}

	logger.Info("publishing commands", "checksum", checksum)
	if _, err := session.ApplicationCommandBulkOverwrite(s.config.AppID, guildID, cmds); err != nil {
		logger.Error("failed to publish commands", "error", err)
		return command.ErrConnection(fmt.Sprintf("failed to publish commands for scope %s", scope), err)
	}

	if err := s.config.Store.Set(ctx, key, checksum); err != nil {
		logger.Warn("failed to persist command checksum", "error", err)
	}

	logger.Info("commands published")
	return nil
}

// checksumCommands derives a stable checksum of the serialized payload.
// The registry lists commands sorted by name, so the serialization is
// deterministic.
func checksumCommands(cmds []*discordgo.ApplicationCommand) (string, error) {
	raw, err := json.Marshal(cmds)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
