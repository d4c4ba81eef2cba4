package main

import (
	"fmt"
	"math/rand"
	"time"
)

// livenessSupervisor wakes the event loop periodically so it can PING idle
// clients and drop ones that stopped answering. It only ever sends on
// ToServerChan; all the actual state inspection happens in the event loop
// via checkAndPingClients.
func (s *Server) livenessSupervisor() {
	defer s.WG.Done()

	ticker := time.NewTicker(s.Config.PingFrequency)
	defer ticker.Stop()

	for range ticker.C {
		if s.isShuttingDown() {
			return
		}
		s.newEvent(Event{Type: WakeUpEvent})
	}
}

// checkAndPingClients looks at every connected client.
//
// A client whose send queue has already overflowed is dropped outright. A
// registered client idle longer than PingTime, and not already awaiting a
// PONG, gets sent a PING carrying a fresh opaque token. A client that has
// been awaiting a PONG longer than DeadTime is considered dead and dropped.
// An unregistered client idle longer than DeadTime is dropped outright; it
// gets no PING since it may not even have a nick to address one to.
func (s *Server) checkAndPingClients() {
	now := time.Now()

	for _, c := range s.Clients {
		if c.SendQueueExceeded {
			c.quit("SendQ exceeded")
			continue
		}

		if !c.Registered {
			if now.Sub(c.LastActivityTime) > s.Config.DeadTime {
				c.quit("Registration timeout")
			}
			continue
		}

		if c.AwaitingPong {
			if now.Sub(c.LastPingTime) > s.Config.DeadTime {
				c.quit("Ping timeout")
			}
			continue
		}

		if now.Sub(c.LastActivityTime) < s.Config.PingTime {
			continue
		}

		c.AwaitingPong = true
		c.LastPingTime = now
		c.PingToken = newPingToken()
		c.messageFromServer("PING", []string{c.PingToken})
	}
}

// newPingToken generates an opaque value to tag an outstanding liveness
// PING with, so a stray or delayed PONG from an earlier round can't be
// mistaken for an answer to the current one.
func newPingToken() string {
	return fmt.Sprintf("%x", rand.Int63())
}
