package planner

import "errors"

var (
	// ErrRangeRequired is returned when distribution is requested without a usable date range.
	ErrRangeRequired = errors.New("date range required")

	// ErrNoCandidates is returned when adding filtered candidates while the candidate set is empty.
	ErrNoCandidates = errors.New("no candidates to add")

	// ErrCandidatesExhausted signals that every place of a city has been offered or is already planned.
	ErrCandidatesExhausted = errors.New("no more unplanned places for city")

	// ErrUnknownGroup is returned for reorder moves that reference a group not in the current view.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrIndexOutOfRange is returned for reorder moves whose source index does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownItem is returned when an item reference does not resolve within the plan.
	ErrUnknownItem = errors.New("unknown item")

	// ErrSuperseded is returned by a catalog fetch whose result was discarded
	// because a newer fetch started before it completed.
	ErrSuperseded = errors.New("superseded by a newer request")
)
