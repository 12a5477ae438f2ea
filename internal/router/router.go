// Package router maps OSC messages onto VLC control commands.
//
// A message address selects a recipient and a command name (see Resolver),
// the command name selects a VLC command from a CommandTable, and the
// command's ArgRule turns the message arguments into query parameters. The
// resulting query is handed to the recipient.
//
// Router is read-only after construction. Handle may be called from any
// number of goroutines at once.
package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"evalgo.org/oscbridge/internal/metrics"
	"evalgo.org/oscbridge/internal/player"
)

// Config holds optional router dependencies.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Router is the entry point for decoded OSC messages.
type Router struct {
	resolver *Resolver
	commands *CommandTable
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a router.
func New(resolver *Resolver, commands *CommandTable, cfg Config) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		resolver: resolver,
		commands: commands,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

// Commands returns the command table the router dispatches from.
func (r *Router) Commands() *CommandTable {
	return r.commands
}

// Route resolves address and builds the VLC query for args without sending
// anything. Errors are *AddressError, *UnknownCommandError or *ArgumentError.
func (r *Router) Route(address string, args []string) (player.Recipient, string, error) {
	parsed, err := r.resolver.Resolve(address)
	if err != nil {
		return nil, "", err
	}

	cmd, ok := r.commands.Lookup(parsed.Command)
	if !ok {
		return nil, "", &UnknownCommandError{Command: parsed.Command}
	}

	query, err := cmd.Query(args)
	if err != nil {
		return nil, "", err
	}

	return parsed.Recipient, query, nil
}

// Handle routes one message and sends the resulting command. Routing errors
// are logged and the message is dropped; nothing is returned to the caller.
func (r *Router) Handle(ctx context.Context, address string, args []string) {
	logger := r.logger.With(
		slog.String("msg_id", uuid.NewString()),
		slog.String("address", address),
	)

	recipient, query, err := r.Route(address, args)
	if err != nil {
		result := metrics.ResultInvalidAddress
		switch {
		case errors.Is(err, ErrUnknownCommand):
			result = metrics.ResultUnknownCommand
		case errors.Is(err, ErrMissingArgument):
			result = metrics.ResultInvalidArgument
		}
		r.metrics.MessageHandled(result)

		logger.Warn("osc_message_dropped",
			slog.String("reason", result),
			slog.Any("args", args),
			slog.String("error", err.Error()),
		)
		return
	}

	r.metrics.MessageHandled(metrics.ResultDispatched)
	logger.Info("osc_message_dispatched", slog.String("query", query))

	recipient.SendCommand(ctx, query)
}
