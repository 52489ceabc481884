// Package supervision provides ready-made SupervisionStrategy
// implementations for use with actor.SpawnWithSupervision.
package supervision

import (
	"time"

	"github.com/aector-go/aector/actor"
)

// SimpleRestart is the most basic supervision strategy: it never gives up.
// A Kill always exits the actor for good (Kill is cooperative, deliberate
// shutdown, not a failure to recover from). Restart and Error both
// rehydrate the actor from its pristine Backup and restart it, optionally
// after a fixed backoff delay.
type SimpleRestart[S actor.Cloneable[S]] struct {
	// Backoff is the delay applied before restarting after ExitError. Zero
	// means restart immediately. ExitRestart (an actor restarting itself
	// deliberately via ctx.Restart) is never delayed, regardless of this
	// setting.
	Backoff time.Duration
}

// Decide implements actor.SupervisionStrategy[S].
func (s SimpleRestart[S]) Decide(reason actor.ExitReason, backup *actor.Backup[S], a *actor.Actor[S]) actor.SupervisionAction {
	switch reason {
	case actor.ExitKill:
		return actor.Exit()
	case actor.ExitRestart:
		actor.ApplyBackup(a, backup)
		return actor.RestartNow()
	case actor.ExitError:
		actor.ApplyBackup(a, backup)
		if s.Backoff > 0 {
			return actor.RestartAfter(s.Backoff)
		}
		return actor.RestartNow()
	default:
		return actor.Exit()
	}
}
