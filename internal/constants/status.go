package constants

type TaskStatus string

const (
	TaskAvailable    TaskStatus = "Available"
	TaskAlreadyTaken TaskStatus = "Already Taken"
	TaskInProgress   TaskStatus = "In Progress"
	TaskOnHold       TaskStatus = "On Hold"
	TaskClosed       TaskStatus = "Closed"
)

// AssignmentStatus is the status of a task_taken row.
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "Pending"
	StatusConfirmed AssignmentStatus = "Confirmed"
	StatusOngoing   AssignmentStatus = "Ongoing"
	StatusReview    AssignmentStatus = "Review"
	StatusReworking AssignmentStatus = "Reworking"
	StatusCompleted AssignmentStatus = "Completed"
	StatusRejected  AssignmentStatus = "Rejected"
	StatusDeclined  AssignmentStatus = "Declined"
	StatusExpired   AssignmentStatus = "Expired"
	StatusCancelled AssignmentStatus = "Cancelled"
	StatusDisputed  AssignmentStatus = "Disputed"
)

var AllAssignmentStatuses = []AssignmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusOngoing,
	StatusReview,
	StatusReworking,
	StatusCompleted,
	StatusRejected,
	StatusDeclined,
	StatusExpired,
	StatusCancelled,
	StatusDisputed,
}

func (s AssignmentStatus) Valid() bool {
	for _, known := range AllAssignmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is expected.
func (s AssignmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusDeclined, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// IsFunded reports whether the client's price is held in escrow while the
// assignment sits in this status.
func (s AssignmentStatus) IsFunded() bool {
	switch s {
	case StatusConfirmed, StatusOngoing, StatusReview, StatusReworking, StatusDisputed:
		return true
	}
	return false
}

var taskStatusByAssignment = map[AssignmentStatus]TaskStatus{
	StatusPending:   TaskAvailable,
	StatusConfirmed: TaskAlreadyTaken,
	StatusOngoing:   TaskInProgress,
	StatusReview:    TaskInProgress,
	StatusReworking: TaskInProgress,
	StatusDisputed:  TaskOnHold,
	StatusCompleted: TaskClosed,
	StatusCancelled: TaskAvailable,
	StatusExpired:   TaskAvailable,
	StatusRejected:  TaskAvailable,
	StatusDeclined:  TaskAvailable,
}

// TaskStatusFor returns the parent task status mirrored from an assignment
// status.
func TaskStatusFor(s AssignmentStatus) TaskStatus {
	if ts, ok := taskStatusByAssignment[s]; ok {
		return ts
	}
	return TaskAvailable
}
