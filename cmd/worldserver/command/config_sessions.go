package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/emberwild/worldserver/internal/session"
)

type SessionsConfig struct {
	MaxSessions int    `json:"max_sessions"`
	IdleTimeout string `json:"idle_timeout"`
}

func (s *SessionsConfig) validate() error {
	el := errors.NewErrorList()

	if s.MaxSessions < 0 {
		el.Add(fmt.Errorf("max_sessions cannot be negative"))
	}
	if s.IdleTimeout != "" {
		d, err := time.ParseDuration(s.IdleTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing idle_timeout: %w", err))
		} else if d < time.Minute {
			el.Add(fmt.Errorf("idle_timeout must be at least 1 minute"))
		}
	}

	return el.Err()
}

func (s *SessionsConfig) registryOpts(onDelete func(string)) []session.RegistryOpt {
	opts := []session.RegistryOpt{session.WithDeleteHook(onDelete)}
	if s.MaxSessions > 0 {
		opts = append(opts, session.WithMaxSessions(s.MaxSessions))
	}
	if s.IdleTimeout != "" {
		if d, err := time.ParseDuration(s.IdleTimeout); err == nil {
			opts = append(opts, session.WithIdleAfter(d))
		}
	}
	return opts
}
