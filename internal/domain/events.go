/**
 * @description
 * This file defines the domain models for messages exchanged over the message broker
 * (RabbitMQ). Published events describe workflow outcomes; consumed commands trigger
 * workflows asynchronously.
 *
 * @notes
 * - Events are informational. Publishing them never changes a workflow's result.
 */
package domain

import "time"

// Routing keys for published workflow events.
const (
	EventPaymentSubmitted        = "payment.submitted"
	EventPaymentSubmissionFailed = "payment.submission_failed"
	EventPaymentOrphanedReminder = "payment.orphaned.reminder"
	EventAccountProvisioned      = "account.provisioned"
)

// CommandAccountOpenRequested is the routing key of the consumed account-open command.
const CommandAccountOpenRequested = "account.open.requested"

// PaymentEvent is published after the create-and-submit workflow ran past creation.
type PaymentEvent struct {
	EventID          string        `json:"event_id"`
	WorkflowID       string        `json:"workflow_id"`
	SourceAccountURL string        `json:"source_account_url"`
	PaymentURL       string        `json:"payment_url"`
	SubmissionURL    string        `json:"submission_url,omitempty"`
	Scheme           PaymentScheme `json:"scheme"`
	Amount           Money         `json:"amount"`
	Error            string        `json:"error,omitempty"`
	Timestamp        time.Time     `json:"timestamp"`
}

// AccountProvisionedEvent is published when the provisioning workflow returns.
type AccountProvisionedEvent struct {
	EventID    string        `json:"event_id"`
	AccountURL string        `json:"account_url"`
	Status     AccountStatus `json:"status"`
	TimedOut   bool          `json:"timed_out"`
	Timestamp  time.Time     `json:"timestamp"`
}

// AccountOpenRequestedCommand asks the service to open an operational account.
type AccountOpenRequestedCommand struct {
	DisplayName string `json:"display_name"`
}
