package domain

import "errors"

// ErrTransitionNotAllowed is returned when a policy rejects a from -> to pair.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// TransitionPolicy decides whether a shipment may move between two statuses.
type TransitionPolicy interface {
	Allows(from, to Status) bool
}

// TransitionTable maps a current status to the set of statuses it may move to.
type TransitionTable map[Status]map[Status]struct{}

// Allows reports whether the table contains the from -> to edge.
func (t TransitionTable) Allows(from, to Status) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// PermissiveTransitions allows every recognized status to follow every other one,
// including moves out of DELIVERED and CANCELLED.
func PermissiveTransitions() TransitionTable {
	all := Statuses()
	table := make(TransitionTable, len(all))
	for _, from := range all {
		targets := make(map[Status]struct{}, len(all))
		for _, to := range all {
			targets[to] = struct{}{}
		}
		table[from] = targets
	}
	return table
}

// ForwardOnlyTransitions only allows the happy path plus cancellation before delivery.
func ForwardOnlyTransitions() TransitionTable {
	return TransitionTable{
		StatusCreated: {
			StatusInTransit: {},
			StatusCancelled: {},
		},
		StatusInTransit: {
			StatusDelivered: {},
			StatusCancelled: {},
		},
		StatusDelivered: {},
		StatusCancelled: {},
	}
}
