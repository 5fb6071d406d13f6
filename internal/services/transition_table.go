package services

import (
	"slices"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

type effect int

const (
	effectNone effect = iota
	effectHold
	effectRefundIfFunded
	effectReleaseFull
	effectOpenDispute
)

type rule struct {
	from           []constants.AssignmentStatus
	to             constants.AssignmentStatus
	role           constants.Role
	effect         effect
	reasonRequired bool
	stampEndDate   bool
	rework         bool
	ableToDelete   bool
	release        bool
}

func (r rule) allows(from constants.AssignmentStatus) bool {
	return slices.Contains(r.from, from)
}

var reviewRule = rule{
	from:         []constants.AssignmentStatus{constants.StatusOngoing, constants.StatusReworking},
	to:           constants.StatusReview,
	role:         constants.RoleTasker,
	stampEndDate: true,
}

var transitions = map[constants.Action]rule{
	constants.ActionAccept: {
		from:   []constants.AssignmentStatus{constants.StatusPending},
		to:     constants.StatusConfirmed,
		effect: effectHold,
	},
	constants.ActionStart: {
		from: []constants.AssignmentStatus{constants.StatusConfirmed},
		to:   constants.StatusOngoing,
	},
	constants.ActionReworking: {
		from:   []constants.AssignmentStatus{constants.StatusReview},
		to:     constants.StatusReworking,
		role:   constants.RoleClient,
		rework: true,
	},
	constants.ActionExpired: {
		from:         []constants.AssignmentStatus{constants.StatusPending},
		to:           constants.StatusExpired,
		ableToDelete: true,
	},
	constants.ActionReject: {
		from:           []constants.AssignmentStatus{constants.StatusPending},
		to:             constants.StatusRejected,
		reasonRequired: true,
	},
	constants.ActionDeclined: {
		from:           []constants.AssignmentStatus{constants.StatusPending},
		to:             constants.StatusDeclined,
		reasonRequired: true,
	},
	constants.ActionReview: reviewRule,
	constants.ActionCancel: {
		from: []constants.AssignmentStatus{
			constants.StatusPending,
			constants.StatusConfirmed,
			constants.StatusOngoing,
		},
		to:             constants.StatusCancelled,
		effect:         effectRefundIfFunded,
		reasonRequired: true,
	},
	constants.ActionDisputed: {
		from: []constants.AssignmentStatus{
			constants.StatusConfirmed,
			constants.StatusOngoing,
			constants.StatusReview,
			constants.StatusReworking,
		},
		to:     constants.StatusDisputed,
		effect: effectOpenDispute,
	},
}

var clientFinishRule = rule{
	from:         []constants.AssignmentStatus{constants.StatusReview},
	to:           constants.StatusCompleted,
	role:         constants.RoleClient,
	effect:       effectReleaseFull,
	ableToDelete: true,
	release:      true,
}

// ruleFor resolves the rule an actor triggers. Finish depends on who sends
// it: a tasker submits for review, a client signs off.
func ruleFor(action constants.Action, role constants.Role) (rule, error) {
	if !role.Party() {
		return rule{}, apperrors.ErrInvalidRole
	}

	var r rule
	if action == constants.ActionFinish {
		r = clientFinishRule
		if role == constants.RoleTasker {
			r = reviewRule
		}
	} else {
		var ok bool
		r, ok = transitions[action]
		if !ok {
			return rule{}, apperrors.ErrInvalidAction
		}
	}

	if r.role != "" && r.role != role {
		return rule{}, apperrors.Validation("%s is not allowed for role %s", action, role)
	}
	return r, nil
}
