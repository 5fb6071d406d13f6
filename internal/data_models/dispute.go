package dto

// ResolveDisputeRequest keeps task_status and task_id for compatibility
// with existing moderator clients. Neither decides the outcome.
type ResolveDisputeRequest struct {
	TaskTakenID      string `json:"task_taken_id"`
	TaskStatus       string `json:"task_status"`
	TaskID           string `json:"task_id"`
	ModeratorID      int64  `json:"moderator_id"`
	ModeratorAction  string `json:"moderator_action"`
	AddlDisputeNotes string `json:"addl_dispute_notes"`
}
