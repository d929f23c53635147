package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// OwnerID scopes persisted plans. It is derived from the authenticated subject.
type OwnerID string

// PlanID is an internal identifier for a persisted plan.
type PlanID string

// EntityID identifies a catalog entity (city, place, route or event).
// IDs are unique per kind, not across kinds.
type EntityID string

// OwnerFromSubject maps an authenticated subject to the owner key used by the plan store.
func OwnerFromSubject(s SubjectID) OwnerID { return OwnerID(s) }
