package actor

import "errors"

// ErrNameAlreadyInUse is returned by Spawn/SpawnWithSupervision when the
// requested registry name is already taken by a live actor.
var ErrNameAlreadyInUse = errors.New("aector: actor name already in use")

// ErrActorNotSpawnedYet is returned when a Context-scoped operation that
// requires a live ActorSystem back-reference (spawning a child, broadcasting)
// is attempted before the owning actor has itself joined a system.
var ErrActorNotSpawnedYet = errors.New("aector: actor has not been spawned yet")
