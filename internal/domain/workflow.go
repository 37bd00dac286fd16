/**
 * @description
 * This file defines the records the service journals about its own workflow runs.
 * They are an operator audit trail, decoupled from the remote API's resources.
 */
package domain

import "time"

// PaymentWorkflowStage is how far a create-and-submit run got.
type PaymentWorkflowStage string

const (
	StageCreateFailed PaymentWorkflowStage = "create_failed"
	StageSubmitFailed PaymentWorkflowStage = "submit_failed"
	StageSubmitted    PaymentWorkflowStage = "submitted"
)

// PaymentWorkflowRecord is one create-and-submit run.
type PaymentWorkflowRecord struct {
	ID               string               `json:"id"`
	SourceAccountURL string               `json:"source_account_url"`
	PaymentURL       string               `json:"payment_url,omitempty"`
	SubmissionURL    string               `json:"submission_url,omitempty"`
	Scheme           PaymentScheme        `json:"scheme"`
	Amount           Money                `json:"amount"`
	Stage            PaymentWorkflowStage `json:"stage"`
	Error            string               `json:"error,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	ResolvedAt       *time.Time           `json:"resolved_at,omitempty"`
}

// Orphaned reports whether the run left a payment upstream without a submission.
func (r PaymentWorkflowRecord) Orphaned() bool {
	return r.Stage == StageSubmitFailed && r.ResolvedAt == nil
}

// AccountProvisioningRecord is one open-operational-account run.
type AccountProvisioningRecord struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	AccountURL  string        `json:"account_url"`
	Status      AccountStatus `json:"status"`
	Polls       int           `json:"polls"`
	TimedOut    bool          `json:"timed_out"`
	PollError   string        `json:"poll_error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
