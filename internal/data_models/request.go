package dto

type CreateRequestRequest struct {
	TaskID   string `json:"task_id"`
	TaskerID int64  `json:"tasker_id"`
}

// TransitionRequest arrives as JSON or, when evidence is attached, as a
// multipart form carrying the same fields.
type TransitionRequest struct {
	Value            string `json:"value" form:"value"`
	Role             string `json:"role" form:"role"`
	ReasonForDispute string `json:"reason_for_dispute" form:"reason_for_dispute"`
	DisputeDetails   string `json:"dispute_details" form:"dispute_details"`
	RejectionReason  string `json:"rejection_reason" form:"rejection_reason"`
	Reason           string `json:"reason" form:"reason"`
}

// CancellationReason accepts the reason under either field name.
func (r TransitionRequest) CancellationReason() string {
	if r.RejectionReason != "" {
		return r.RejectionReason
	}
	return r.Reason
}

type VisitRequest struct {
	Role string `json:"role"`
}
