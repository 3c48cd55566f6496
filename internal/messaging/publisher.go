package messaging

import "fmt"

// MemberResolver maps a session id to the live connection ids in its room.
// The session registry implements it.
type MemberResolver interface {
	ConnIDs(sessionID string) []string
}

// RoomPublisher delivers messages to individual connection subjects and
// fans room broadcasts out across a session's members.
type RoomPublisher struct {
	bus      *Bus
	resolver MemberResolver
}

func NewRoomPublisher(bus *Bus, resolver MemberResolver) *RoomPublisher {
	return &RoomPublisher{bus: bus, resolver: resolver}
}

// ConnSubject is the per-connection delivery subject.
func ConnSubject(connID string) string {
	return fmt.Sprintf("conn.%s", connID)
}

// ToConn sends data to a single connection.
func (p *RoomPublisher) ToConn(connID string, data []byte) error {
	return p.bus.Publish(ConnSubject(connID), data)
}

// ToSession sends data to every connection in a session room, skipping any
// ids in exclude.
func (p *RoomPublisher) ToSession(sessionID string, exclude []string, data []byte) error {
	excludeSet := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}
	var firstErr error
	for _, connID := range p.resolver.ConnIDs(sessionID) {
		if excludeSet[connID] {
			continue
		}
		if err := p.bus.Publish(ConnSubject(connID), data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
