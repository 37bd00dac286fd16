/**
 * @description
 * This file defines the event handler that processes account-open commands from
 * RabbitMQ by running the operational account provisioning workflow.
 */
package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/transfa/griffin-service/internal/domain"
)

const accountOpenHandlerTimeout = 45 * time.Second

// AccountProvisioningRunner is implemented by *AccountProvisioner.
type AccountProvisioningRunner interface {
	OpenOperationalAccount(ctx context.Context, displayName string) (*domain.BankAccount, error)
}

// AccountEventHandler handles account-open commands.
type AccountEventHandler struct {
	provisioner AccountProvisioningRunner
	logger      *slog.Logger
}

// NewAccountEventHandler creates a new instance of AccountEventHandler.
func NewAccountEventHandler(provisioner AccountProvisioningRunner, logger *slog.Logger) *AccountEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountEventHandler{provisioner: provisioner, logger: logger}
}

// HandleAccountOpenRequested processes an account.open.requested command. Every
// outcome is acknowledged: a malformed message cannot succeed on redelivery, and a
// failed or partial run must not open a second account.
func (h *AccountEventHandler) HandleAccountOpenRequested(body []byte) bool {
	log := h.logger.With("component", "account_event_handler", "routing_key", domain.CommandAccountOpenRequested)

	var cmd domain.AccountOpenRequestedCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		log.Error("malformed account open command; acking", "err", err)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), accountOpenHandlerTimeout)
	defer cancel()

	account, err := h.provisioner.OpenOperationalAccount(ctx, cmd.DisplayName)
	if err != nil {
		log.Error("failed to provision operational account; acking to avoid duplicate provisioning",
			"display_name", cmd.DisplayName, "err", err)
		return true
	}

	log.Info("operational account provisioned from command",
		"account_url", account.AccountURL, "status", account.AccountStatus)
	return true
}
