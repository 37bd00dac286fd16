/**
 * @description
 * This file implements operational account provisioning: open the account, then
 * poll it at a fixed interval until it leaves the "opening" state or a deadline passes.
 *
 * @notes
 * - Any status other than "opening" ends polling, including "closing" and "closed".
 * - Reaching the deadline, a failed poll, or cancellation during the wait all return the
 *   last snapshot as a success. Callers must check AccountStatus.
 * - Polls are strictly sequential with a fixed interval; there is no backoff or jitter.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/internal/store"
)

const (
	// DefaultOperationalAccountName is used when no display name is given.
	DefaultOperationalAccountName = "Operational Account"

	defaultPollInterval = time.Second
	defaultPollTimeout  = 10 * time.Second
)

// AccountProvisioner opens operational accounts and waits for them to settle.
type AccountProvisioner struct {
	client    GriffinClient
	repo      store.WorkflowRepository
	publisher EventPublisher
	exchange  string
	logger    *slog.Logger
	interval  time.Duration
	timeout   time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAccountProvisioner creates a new AccountProvisioner. Non-positive interval or
// timeout fall back to one second and ten seconds.
func NewAccountProvisioner(client GriffinClient, repo store.WorkflowRepository, publisher EventPublisher, exchange string, logger *slog.Logger, interval, timeout time.Duration) *AccountProvisioner {
	if repo == nil {
		repo = store.NoopWorkflowRepository{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &AccountProvisioner{
		client:    client,
		repo:      repo,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
		interval:  interval,
		timeout:   timeout,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// OpenOperationalAccount opens an operational account and polls it until it is no
// longer opening or the poll deadline passes.
func (p *AccountProvisioner) OpenOperationalAccount(ctx context.Context, displayName string) (*domain.BankAccount, error) {
	if strings.TrimSpace(displayName) == "" {
		displayName = DefaultOperationalAccountName
	}

	account, err := p.client.OpenAccount(ctx, displayName, domain.ProductOperationalAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to open operational account: %w", err)
	}

	log := p.logger.With("component", "account_provisioner", "account_url", account.AccountURL)
	log.Info("operational account requested", "status", account.AccountStatus)

	record := &domain.AccountProvisioningRecord{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		AccountURL:  account.AccountURL,
		CreatedAt:   time.Now().UTC(),
	}

	deadline := p.now().Add(p.timeout)
	for account.AccountStatus == domain.AccountStatusOpening && p.now().Before(deadline) {
		if err := p.sleep(ctx, p.interval); err != nil {
			log.Warn("polling interrupted; returning last snapshot", "err", err)
			break
		}

		latest, err := p.client.GetBankAccount(ctx, account.AccountURL)
		record.Polls++
		if err != nil {
			log.Warn("failed to poll account status; returning last snapshot", "poll", record.Polls, "err", err)
			record.PollError = err.Error()
			break
		}
		account = latest
	}

	record.Status = account.AccountStatus
	record.TimedOut = account.AccountStatus == domain.AccountStatusOpening &&
		record.PollError == "" && !p.now().Before(deadline)
	if record.TimedOut {
		log.Warn("account still opening at poll deadline", "polls", record.Polls, "timeout", p.timeout)
	} else {
		log.Info("account provisioning finished", "status", account.AccountStatus, "polls", record.Polls)
	}

	p.finish(ctx, log, record)
	return account, nil
}

func (p *AccountProvisioner) finish(ctx context.Context, log *slog.Logger, record *domain.AccountProvisioningRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := p.repo.RecordAccountProvisioning(ctx, record); err != nil {
		log.Warn("failed to journal account provisioning", "err", err)
	}
	event := domain.AccountProvisionedEvent{
		EventID:    uuid.NewString(),
		AccountURL: record.AccountURL,
		Status:     record.Status,
		TimedOut:   record.TimedOut,
		Timestamp:  time.Now().UTC(),
	}
	if err := p.publisher.Publish(ctx, p.exchange, domain.EventAccountProvisioned, event); err != nil {
		log.Warn("failed to publish account provisioned event", "err", err)
	}
}
