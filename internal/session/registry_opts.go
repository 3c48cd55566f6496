package session

import "time"

type RegistryOpt func(*Registry)

func WithMaxSessions(n int) RegistryOpt {
	return func(r *Registry) {
		r.maxSessions = n
	}
}

func WithIdleAfter(d time.Duration) RegistryOpt {
	return func(r *Registry) {
		r.idleAfter = d
	}
}

// WithDeleteHook registers a callback invoked, under the registry lock,
// whenever a session is deleted for any reason. The worlds behind deleted
// sessions are torn down through it.
func WithDeleteHook(fn func(sessionID string)) RegistryOpt {
	return func(r *Registry) {
		r.onDelete = fn
	}
}
