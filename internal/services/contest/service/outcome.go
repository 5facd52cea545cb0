// Package service implements the contest lifecycle and payment
// reconciliation engines on top of the storage and gateway boundaries.
package service

// Outcome labels the result of operations whose repeats are successful
// no-ops rather than failures.
type Outcome string

const (
	// OutcomeCreated indicates a new record was written.
	OutcomeCreated Outcome = "created"
	// OutcomeAlreadyExists indicates signup found an existing account.
	OutcomeAlreadyExists Outcome = "already_exists"
	// OutcomeUpdated indicates a generic contest update was applied.
	OutcomeUpdated Outcome = "updated"
	// OutcomeAlreadyAdded indicates the update carried an email already
	// holding a participant seat, so nothing was written.
	OutcomeAlreadyAdded Outcome = "already_added"
	// OutcomeAdmitted indicates reconciliation admitted the buyer.
	OutcomeAdmitted Outcome = "admitted"
	// OutcomeAlreadyParticipant indicates reconciliation found the buyer
	// already seated, so nothing was written.
	OutcomeAlreadyParticipant Outcome = "already_participant"
	// OutcomeNotPaid indicates the session has not completed payment.
	OutcomeNotPaid Outcome = "not_paid"
)
