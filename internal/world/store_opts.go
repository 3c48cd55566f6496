package world

import "time"

type StoreOpt func(*Store)

func WithEventSink(sink EventSink) StoreOpt {
	return func(s *Store) {
		s.sink = sink
	}
}

func WithDayLength(d time.Duration) StoreOpt {
	return func(s *Store) {
		s.dayLength = d
	}
}

func WithCleanupAfter(d time.Duration) StoreOpt {
	return func(s *Store) {
		s.cleanupAfter = d
	}
}
