package dto

type CreateTaskRequest struct {
	ClientID       int64  `json:"client_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Specialization string `json:"specialization"`
	ProposedPrice  int64  `json:"proposed_price"`
	Urgent         bool   `json:"urgent"`
}
