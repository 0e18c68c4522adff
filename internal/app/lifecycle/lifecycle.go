// Package lifecycle holds the item and claim state machines and the side effects
// each admin action produces. Everything here is pure; services apply the result.
package lifecycle

import (
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

// Action identifies a status change
type Action string

const (
	ActionApproveSubmission Action = "approve_submission"
	ActionRejectSubmission  Action = "reject_submission"
	ActionArchive           Action = "archive"
	ActionMarkClaimed       Action = "mark_claimed"
	ActionApproveClaim      Action = "approve_claim"
	ActionRejectClaim       Action = "reject_claim"
)

// Default admin notes applied when a rejection carries no reason
const (
	DefaultSubmissionRejectNote = "Your submission did not meet the listing guidelines"
	DefaultClaimRejectNote      = "Insufficient evidence"
)

type itemEdge struct {
	from models.ItemStatus
	to   models.ItemStatus
}

type claimEdge struct {
	from models.ClaimStatus
	to   models.ClaimStatus
}

var itemEdges = map[Action]itemEdge{
	ActionApproveSubmission: {models.ItemStatusPending, models.ItemStatusApproved},
	ActionRejectSubmission:  {models.ItemStatusPending, models.ItemStatusRejected},
	ActionArchive:           {models.ItemStatusApproved, models.ItemStatusResolved},
	ActionMarkClaimed:       {models.ItemStatusApproved, models.ItemStatusClaimed},
}

var claimEdges = map[Action]claimEdge{
	ActionApproveClaim: {models.ClaimStatusPending, models.ClaimStatusApproved},
	ActionRejectClaim:  {models.ClaimStatusPending, models.ClaimStatusRejected},
}

var itemTransitionMessages = map[Action]string{
	ActionApproveSubmission: "Only pending submissions can be approved",
	ActionRejectSubmission:  "Only pending submissions can be rejected",
	ActionArchive:           "Only approved items can be archived",
	ActionMarkClaimed:       "Only approved items can be marked as claimed",
}

var claimTransitionMessages = map[Action]string{
	ActionApproveClaim: "Only pending claims can be approved",
	ActionRejectClaim:  "Only pending claims can be rejected",
}

// ItemTransition returns the source and target status of an item action
func ItemTransition(action Action) (from, to models.ItemStatus, ok bool) {
	e, ok := itemEdges[action]
	return e.from, e.to, ok
}

// ClaimTransition returns the source and target status of a claim action
func ClaimTransition(action Action) (from, to models.ClaimStatus, ok bool) {
	e, ok := claimEdges[action]
	return e.from, e.to, ok
}

// CanTransitionItem reports whether from -> to is an edge of the item lifecycle
func CanTransitionItem(from, to models.ItemStatus) bool {
	for _, e := range itemEdges {
		if e.from == from && e.to == to {
			return true
		}
	}
	return false
}

// CanTransitionClaim reports whether from -> to is an edge of the claim lifecycle
func CanTransitionClaim(from, to models.ClaimStatus) bool {
	for _, e := range claimEdges {
		if e.from == from && e.to == to {
			return true
		}
	}
	return false
}

// IsTerminalItem reports whether no edge leaves s
func IsTerminalItem(s models.ItemStatus) bool {
	for _, e := range itemEdges {
		if e.from == s {
			return false
		}
	}
	return true
}

// CheckItem validates that action may be applied to an item currently in status current
func CheckItem(action Action, current models.ItemStatus) error {
	e, ok := itemEdges[action]
	if !ok {
		return apperrors.NewInvalidTransitionError("Unknown item action")
	}
	if current != e.from {
		return apperrors.NewInvalidTransitionError(itemTransitionMessages[action])
	}
	return nil
}

// CheckClaim validates that action may be applied to a claim currently in status current
func CheckClaim(action Action, current models.ClaimStatus) error {
	e, ok := claimEdges[action]
	if !ok {
		return apperrors.NewInvalidTransitionError("Unknown claim action")
	}
	if current != e.from {
		return apperrors.NewInvalidTransitionError(claimTransitionMessages[action])
	}
	return nil
}

// ItemTransitionError is the error a lost conditional update on an item surfaces as
func ItemTransitionError(action Action) error {
	return apperrors.NewInvalidTransitionError(itemTransitionMessages[action])
}

// ClaimTransitionError is the error a lost conditional update on a claim surfaces as
func ClaimTransitionError(action Action) error {
	return apperrors.NewInvalidTransitionError(claimTransitionMessages[action])
}

// NoteOrDefault returns note, or the default for rejection actions when empty
func NoteOrDefault(action Action, note *string) *string {
	if note != nil && *note != "" {
		return note
	}
	var def string
	switch action {
	case ActionRejectSubmission:
		def = DefaultSubmissionRejectNote
	case ActionRejectClaim:
		def = DefaultClaimRejectNote
	default:
		return nil
	}
	return &def
}
