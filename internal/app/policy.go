package app

import "mathquiz-service/internal/domain"

// Authorize applies the single ownership rule: a quiz is readable and writable
// by its creator and nobody else. An empty requester means no authenticated
// identity was presented.
func Authorize(requesterID, ownerID string) domain.AccessDecision {
	if requesterID == "" {
		return domain.DenyUnauthenticated
	}
	if requesterID == ownerID {
		return domain.Permit
	}
	return domain.DenyForbidden
}

// decisionErr maps a denial onto the error taxonomy. Permit maps to nil.
func decisionErr(decision domain.AccessDecision) error {
	switch decision {
	case domain.DenyUnauthenticated:
		return domain.ErrUnauthenticated
	case domain.DenyForbidden:
		return domain.ErrForbidden
	default:
		return nil
	}
}
