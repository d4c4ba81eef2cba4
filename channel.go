package main

import "time"

// Channel holds everything to do with a single channel. Only "#" channels
// are supported.
type Channel struct {
	// Name is the canonicalized channel name.
	Name string

	// Members holds every client currently on the channel, keyed by client ID.
	// If a channel has zero members it must not exist in the server's
	// Channels map.
	Members map[uint64]*Client

	// JoinOrder records member client IDs in the order they joined, oldest
	// first. It's how we pick a successor when a channel loses its last
	// operator: the longest-standing remaining member is promoted.
	JoinOrder []uint64

	// Operators holds the client IDs with channel operator status.
	Operators map[uint64]struct{}

	// Invited holds canonicalized nicks that have been INVITEd and so may
	// JOIN while the channel is invite-only. An invite is consumed on join.
	Invited map[string]struct{}

	Topic      string
	TopicSetBy string
	TopicSetAt time.Time

	// InviteOnly is channel mode +i.
	InviteOnly bool

	// TopicLocked is channel mode +t: only an operator may change the topic.
	TopicLocked bool
}

// NewChannel creates an empty channel with the default modes +nt (+n is
// always on; +t is TopicLocked).
func NewChannel(name string) *Channel {
	return &Channel{
		Name:        name,
		Members:     map[uint64]*Client{},
		Operators:   map[uint64]struct{}{},
		Invited:     map[string]struct{}{},
		TopicLocked: true,
	}
}

// isOperator reports whether the client id holds channel operator status.
func (ch *Channel) isOperator(id uint64) bool {
	_, exists := ch.Operators[id]
	return exists
}

// addMember adds a client to the channel. The first member to join becomes
// channel operator.
func (ch *Channel) addMember(c *Client) {
	ch.Members[c.ID] = c
	ch.JoinOrder = append(ch.JoinOrder, c.ID)
	delete(ch.Invited, canonicalizeNick(c.DisplayNick))

	if len(ch.Members) == 1 {
		ch.Operators[c.ID] = struct{}{}
	}
}

// removeMember removes a client from the channel and, if it was the last
// operator, promotes the longest-standing remaining member in its place.
// It returns true if the channel is now empty and should be dropped.
func (ch *Channel) removeMember(id uint64) bool {
	delete(ch.Members, id)
	delete(ch.Operators, id)

	for i, memberID := range ch.JoinOrder {
		if memberID == id {
			ch.JoinOrder = append(ch.JoinOrder[:i], ch.JoinOrder[i+1:]...)
			break
		}
	}

	if len(ch.Members) == 0 {
		return true
	}

	if len(ch.Operators) == 0 {
		for _, candidateID := range ch.JoinOrder {
			if _, onChannel := ch.Members[candidateID]; onChannel {
				ch.Operators[candidateID] = struct{}{}
				break
			}
		}
	}

	return false
}
