package notification

import "taskhive/internal/domain"

// Business event types. Closed set; anything a collaborator can observe
// happening to a shared entity maps to exactly one of these.
const (
	TypeMemberJoined        = "member_joined"
	TypeMemberLeft          = "member_left"
	TypeRoleChanged         = "role_changed"
	TypeEntityCreated       = "entity_created"
	TypeEntityUpdated       = "entity_updated"
	TypeEntityCompleted     = "entity_completed"
	TypeEntityDeleted       = "entity_deleted"
	TypeEntityRestored      = "entity_restored"
	TypeCollaboratorAdded   = "collaborator_added"
	TypeCollaboratorRemoved = "collaborator_removed"
	TypeReviewRequested     = "review_requested"
)

// Priority is fixed per event type. It drives client-side sorting and
// urgency styling only, never delivery behavior.
var typePriority = map[string]string{
	TypeMemberJoined:        domain.PriorityMedium,
	TypeMemberLeft:          domain.PriorityLow,
	TypeRoleChanged:         domain.PriorityMedium,
	TypeEntityCreated:       domain.PriorityLow,
	TypeEntityUpdated:       domain.PriorityLow,
	TypeEntityCompleted:     domain.PriorityMedium,
	TypeEntityDeleted:       domain.PriorityHigh,
	TypeEntityRestored:      domain.PriorityMedium,
	TypeCollaboratorAdded:   domain.PriorityMedium,
	TypeCollaboratorRemoved: domain.PriorityHigh,
	TypeReviewRequested:     domain.PriorityUrgent,
}

// PriorityFor returns the fixed priority for an event type, medium for
// anything unknown.
func PriorityFor(eventType string) string {
	if p, ok := typePriority[eventType]; ok {
		return p
	}
	return domain.PriorityMedium
}

// KnownType reports whether eventType belongs to the closed enum.
func KnownType(eventType string) bool {
	_, ok := typePriority[eventType]
	return ok
}
