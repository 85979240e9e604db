package services

import "social-go/internal/models"

// CanMutate reports whether actorID may edit or delete entity: only its
// creator may. There is no administrator override.
func CanMutate(entity models.Owned, actorID string) bool {
	if entity == nil || actorID == "" {
		return false
	}
	return entity.GetCreatorID() == actorID
}
