package constants

type Action string

const (
	ActionAccept    Action = "Accept"
	ActionReworking Action = "Reworking"
	ActionExpired   Action = "Expired"
	ActionStart     Action = "Start"
	ActionReject    Action = "Reject"
	ActionDeclined  Action = "Declined"
	ActionReview    Action = "Review"
	ActionCancel    Action = "Cancel"
	ActionDisputed  Action = "Disputed"
	ActionFinish    Action = "Finish"
)

type Role string

const (
	RoleClient    Role = "client"
	RoleTasker    Role = "tasker"
	RoleModerator Role = "moderator"
)

// Party reports whether the role owns a credit balance.
func (r Role) Party() bool {
	return r == RoleClient || r == RoleTasker
}

type ModeratorAction string

const (
	RefundTokens  ModeratorAction = "refund_tokens"
	ReleaseHalf   ModeratorAction = "release_half"
	ReleaseFull   ModeratorAction = "release_full"
	RejectDispute ModeratorAction = "reject_dispute"
	AutoResolved  ModeratorAction = "auto_resolved"
)

// ResolvedStatus is the assignment status a dispute resolution leaves
// behind. Moderators never choose it directly.
func (a ModeratorAction) ResolvedStatus() (AssignmentStatus, bool) {
	switch a {
	case RefundTokens:
		return StatusCancelled, true
	case ReleaseHalf, ReleaseFull, AutoResolved:
		return StatusCompleted, true
	case RejectDispute:
		return StatusOngoing, true
	}
	return "", false
}

type PaymentType string

const (
	PaymentDeposit    PaymentType = "deposit"
	PaymentWithdrawal PaymentType = "withdrawal"
	PaymentHold       PaymentType = "hold"
	PaymentRefund     PaymentType = "refund"
	PaymentRelease    PaymentType = "release"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)
