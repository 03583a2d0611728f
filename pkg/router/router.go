// Package router dispatches interaction events to registered slash
// commands. It resolves subcommand paths, decodes parameter values,
// executes handlers with panic recovery and a deadline, answers
// autocomplete queries, and turns abort errors into ephemeral replies.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/haasonsaas/slashkit/pkg/command"
	"github.com/haasonsaas/slashkit/pkg/param"
)

// failureReply is the generic apology shown when a handler fails. Abort
// errors carry their own message instead.
const failureReply = "Something went wrong while running this command."

// Config holds configuration for the router.
type Config struct {
	// Registry supplies the commands to dispatch to (required).
	Registry *command.Registry

	// HandlerTimeout bounds handler execution.
	HandlerTimeout time.Duration

	// RateLimit configures outbound response rate limiting (operations
	// per second) with RateBurst as the burst capacity.
	RateLimit float64
	RateBurst int

	// Metrics is an optional metrics sink.
	Metrics *Metrics

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.Registry == nil {
		return command.ErrConfig("registry is required", nil)
	}
	if c.HandlerTimeout == 0 {
		c.HandlerTimeout = 15 * time.Second
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return command.ErrConfig("rate limit and burst must not be negative", nil)
	}
	if c.RateLimit == 0 {
		c.RateLimit = 25
	}
	if c.RateBurst == 0 {
		c.RateBurst = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Router routes interaction events to command handlers.
type Router struct {
	config      Config
	registry    *command.Registry
	rateLimiter *rateLimiter
	metrics     *Metrics
	logger      *slog.Logger
}

// New creates a router for the given configuration.
func New(config Config) (*Router, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Router{
		config:      config,
		registry:    config.Registry,
		rateLimiter: newRateLimiter(config.RateLimit, config.RateBurst),
		metrics:     config.Metrics,
		logger:      config.Logger.With("component", "router"),
	}, nil
}

// Handle is the discordgo event handler. Attach it with session.AddHandler.
func (r *Router) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.Dispatch(s, i)
}

// Dispatch routes one interaction event through a Responder. Tests call it
// directly with a mock session.
func (r *Router) Dispatch(session command.Responder, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		r.dispatchCommand(session, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		r.dispatchAutocomplete(session, i)
	}
}

func (r *Router) dispatchCommand(session command.Responder, i *discordgo.InteractionCreate) {
	startTime := time.Now()
	data := i.ApplicationCommandData()
	dispatchID := uuid.NewString()

	cmd, path, opts, err := r.resolve(data)
	if err != nil {
		r.logger.Warn("unknown command",
			"command", data.Name,
			"dispatch_id", dispatchID)
		r.metrics.recordDispatch(data.Name, statusUnknown)
		r.replyEphemeral(session, i, fmt.Sprintf("Unknown command: /%s", data.Name))
		return
	}

	logger := r.logger.With(
		"command", path,
		"dispatch_id", dispatchID)
	logger.Debug("dispatching command", "option_count", len(opts))

	ctx, cancel := context.WithTimeout(context.Background(), r.config.HandlerTimeout)
	defer cancel()

	if err := r.rateLimiter.wait(ctx); err != nil {
		logger.Warn("rate limit wait cancelled", "error", err)
		r.metrics.recordDispatch(path, statusError)
		return
	}

	inv := command.NewInvocation(dispatchID, session, i, cmd, opts, data.Resolved)
	panicked, err := r.run(ctx, cmd, inv, logger)
	r.metrics.recordLatency(path, time.Since(startTime))

	switch {
	case err == nil:
		r.metrics.recordDispatch(path, statusOK)
		logger.Debug("command handled",
			"latency_ms", time.Since(startTime).Milliseconds())

	case panicked:
		r.metrics.recordDispatch(path, statusPanic)
		r.replyEphemeral(session, i, failureReply)

	default:
		if abort, ok := IsAbort(err); ok {
			// User-facing short circuit. Not a failure.
			r.metrics.recordDispatch(path, statusAbort)
			if err := inv.RespondEphemeral(abort.Message); err != nil {
				// The handler may have deferred already; the follow-up
				// route still reaches the user.
				if err := inv.FollowupEphemeral(abort.Message); err != nil {
					logger.Debug("failed to deliver abort reply", "error", err)
				}
			}
			return
		}
		logger.Error("command handler failed", "error", err)
		r.metrics.recordDispatch(path, statusError)
		r.replyEphemeral(session, i, failureReply)
	}
}

// run executes the handler with panic recovery.
func (r *Router) run(ctx context.Context, cmd *command.Command, inv *command.Invocation, logger *slog.Logger) (panicked bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("command handler panicked", "panic", rec)
			panicked = true
			err = command.ErrInternal(fmt.Sprintf("handler panic: %v", rec), nil)
		}
	}()
	return false, cmd.Handler(ctx, inv)
}

// resolve walks the interaction data down to the leaf command, returning
// the command, its full path ("tag add") and the leaf-level options.
func (r *Router) resolve(data discordgo.ApplicationCommandInteractionData) (*command.Command, string, []*discordgo.ApplicationCommandInteractionDataOption, error) {
	cmd, err := r.registry.Get(data.Name)
	if err != nil {
		return nil, "", nil, err
	}

	path := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		sub := cmd.Subcommand(opts[0].Name)
		if sub == nil {
			return nil, "", nil, command.ErrNotFound(
				fmt.Sprintf("subcommand %q of %q not registered", opts[0].Name, strings.Join(path, " ")), nil)
		}
		cmd = sub
		path = append(path, sub.Name)
		opts = opts[0].Options
	}
	return cmd, strings.Join(path, " "), opts, nil
}

func (r *Router) dispatchAutocomplete(session command.Responder, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	cmd, path, opts, err := r.resolve(data)
	if err != nil {
		r.metrics.recordAutocomplete(data.Name, statusError)
		return
	}

	focused := focusedOption(opts)
	if focused == nil {
		return
	}
	completer := cmd.Autocompleter(focused.Name)
	if completer == nil {
		r.logger.Warn("autocomplete for parameter without completer",
			"command", path,
			"parameter", focused.Name)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.HandlerTimeout)
	defer cancel()

	choices, err := completer(ctx, fmt.Sprint(focused.Value))
	if err != nil {
		r.logger.Error("autocompleter failed",
			"command", path,
			"parameter", focused.Name,
			"error", err)
		r.metrics.recordAutocomplete(path, statusError)
		return
	}
	if len(choices) > param.MaxChoices {
		choices = choices[:param.MaxChoices]
	}

	wire := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, c := range choices {
		wire = append(wire, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value})
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: wire},
	}
	if err := session.InteractionRespond(i.Interaction, resp); err != nil {
		r.logger.Debug("failed to deliver autocomplete choices", "error", err)
		r.metrics.recordAutocomplete(path, statusError)
		return
	}
	r.metrics.recordAutocomplete(path, statusOK)
}

// focusedOption finds the option the user is currently typing.
func focusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range opts {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

// replyEphemeral sends a best-effort ephemeral notice.
func (r *Router) replyEphemeral(session command.Responder, i *discordgo.InteractionCreate, content string) {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
	if err := session.InteractionRespond(i.Interaction, resp); err != nil {
		r.logger.Debug("failed to send ephemeral notice", "error", err)
	}
}
