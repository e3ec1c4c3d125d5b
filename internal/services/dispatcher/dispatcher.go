// Package dispatcher formats croupier commands and sends them into the chat.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/redbet/internal/domain"
	"go.uber.org/zap"
)

const balanceCommand = "$bal"

var wagerCommands = map[domain.WagerKind]string{
	domain.KindRed: "$bet",
	domain.KindLo:  "$lo",
	domain.KindUt:  "$ut",
}

// ChatSender delivers one line of text into the chat.
type ChatSender interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher turns wager requests into chat commands. It knows nothing about
// the ledger: placement bookkeeping happens before the command goes out.
type Dispatcher struct {
	sender ChatSender
	logger *zap.Logger
}

// New creates a dispatcher writing through sender.
func New(sender ChatSender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// PlaceWager sends the wager command for the kind with the given stake.
// The stake is expected to be sanitized already.
func (d *Dispatcher) PlaceWager(ctx context.Context, kind domain.WagerKind, amount int64) error {
	command, ok := wagerCommands[kind]
	if !ok {
		return errors.Errorf("unsupported wager kind: %s", kind)
	}

	return d.send(ctx, fmt.Sprintf("%s %d", command, amount))
}

// CheckBalance asks the croupier for the current balance.
func (d *Dispatcher) CheckBalance(ctx context.Context) error {
	return d.send(ctx, balanceCommand)
}

func (d *Dispatcher) send(ctx context.Context, text string) error {
	commandID := uuid.New().String()

	if err := d.sender.Send(ctx, text); err != nil {
		d.logger.Error("command dispatch failed",
			zap.String("command_id", commandID),
			zap.String("command", text),
			zap.Error(err))
		return errors.Wrapf(err, "dispatch command %q", text)
	}

	d.logger.Info("command dispatched",
		zap.String("command_id", commandID),
		zap.String("command", text))

	return nil
}
