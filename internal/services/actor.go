package services

import "github.com/yukikurage/task-tracker/internal/models"

type actorKind int

const (
	actorAnonymous actorKind = iota
	actorShared
	actorUser
)

// Actor identifies on whose behalf a task operation runs. It is passed into
// every TaskService call instead of being looked up from ambient state.
type Actor struct {
	kind   actorKind
	userID uint64
}

// Anonymous is an unauthenticated caller in a multi-tenant deployment.
// It sees no tasks and may not mutate any.
func Anonymous() Actor {
	return Actor{kind: actorAnonymous}
}

// SharedActor is the single-tenant caller; it owns every unowned task.
func SharedActor() Actor {
	return Actor{kind: actorShared}
}

// UserActor is an authenticated user in a multi-tenant deployment.
func UserActor(userID uint64) Actor {
	return Actor{kind: actorUser, userID: userID}
}

func (a Actor) IsAnonymous() bool {
	return a.kind == actorAnonymous
}

// UserID returns the authenticated user ID, if any.
func (a Actor) UserID() (uint64, bool) {
	if a.kind != actorUser {
		return 0, false
	}
	return a.userID, true
}

// ownerID is the owner_id value this actor reads and writes.
func (a Actor) ownerID() *uint64 {
	if a.kind != actorUser {
		return nil
	}
	id := a.userID
	return &id
}

func (a Actor) owns(task *models.Task) bool {
	switch a.kind {
	case actorUser:
		return task.OwnerID != nil && *task.OwnerID == a.userID
	case actorShared:
		return task.OwnerID == nil
	default:
		return false
	}
}
