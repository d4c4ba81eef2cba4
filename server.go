package main

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"mockircd.dev/server/internal/ircwire"
)

// EventType distinguishes the kinds of events the server's single event loop
// goroutine processes.
type EventType int

// Event types the event loop understands.
const (
	NewClientEvent EventType = iota
	DeadClientEvent
	MessageFromClientEvent
	WakeUpEvent
	RehashEvent
	ShutdownEvent
)

// Event is something that happened that the event loop needs to act on.
// Every mutation of server state happens from inside the loop that consumes
// these, so nothing else needs a lock.
type Event struct {
	Type    EventType
	Client  *Client
	Message ircwire.Message
}

// Server holds all state for a running instance. Every field here is only
// ever read or written from the goroutine running eventLoop, except nextID,
// which the accept loops advance atomically.
type Server struct {
	Config     Config
	ConfigPath string

	Clients map[uint64]*Client

	// Nicks maps a canonicalized nick to the client ID holding it. Tracks
	// unregistered clients too, so nicks claimed pre-registration stay
	// reserved.
	Nicks map[string]uint64

	Channels map[string]*Channel

	WhoWas *WhoWasHistory

	// Opers holds the client IDs currently holding operator status.
	Opers map[uint64]struct{}

	ToServerChan chan Event

	WG sync.WaitGroup

	nextID uint64

	shuttingDown bool
}

// NewServer creates a Server ready to start accepting connections.
func NewServer(config Config, configPath string) *Server {
	return &Server{
		Config:       config,
		ConfigPath:   configPath,
		Clients:      map[uint64]*Client{},
		Nicks:        map[string]uint64{},
		Channels:     map[string]*Channel{},
		WhoWas:       NewWhoWasHistory(),
		Opers:        map[uint64]struct{}{},
		ToServerChan: make(chan Event, 100),
	}
}

func (s *Server) newEvent(e Event) {
	s.ToServerChan <- e
}

func (s *Server) isShuttingDown() bool {
	return s.shuttingDown
}

// ioWait bounds how long a read or write on a client connection may block,
// so a stalled peer can't wedge its reader/writer goroutines forever.
const ioWait = 5 * time.Minute

// start runs the accept loops and the event loop. It blocks until shutdown.
func (s *Server) start(listeners []net.Listener) error {
	for _, ln := range listeners {
		s.WG.Add(1)
		go s.acceptConnections(ln)
	}

	s.WG.Add(1)
	go s.livenessSupervisor()

	s.eventLoop()

	return nil
}

// acceptConnections accepts connections on a listener and spins up a Client
// plus its reader/writer goroutines for each.
func (s *Server) acceptConnections(ln net.Listener) {
	defer s.WG.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isShuttingDown() {
				return
			}
			log.Printf("failed to accept connection: %s", err)
			continue
		}

		id := atomic.AddUint64(&s.nextID, 1) - 1

		client := NewClient(s, id, NewConn(conn, ioWait))

		s.WG.Add(2)
		go client.readLoop()
		go client.writeLoop()

		s.newEvent(Event{Type: NewClientEvent, Client: client})
	}
}

// eventLoop is the single goroutine that owns and mutates all server state.
//
// It never closes ToServerChan: reader/writer goroutines that are mid
// teardown during shutdown may still try to send on it, and sending on a
// closed channel panics. Once shutdown is complete we just stop reading
// from it instead and let the process exit.
func (s *Server) eventLoop() {
	for {
		event := <-s.ToServerChan

		switch event.Type {
		case NewClientEvent:
			log.Printf("new client connection: %s", event.Client)
			s.Clients[event.Client.ID] = event.Client

		case DeadClientEvent:
			if _, exists := s.Clients[event.Client.ID]; exists {
				event.Client.quit("I/O error")
			}

		case MessageFromClientEvent:
			c := event.Client
			if _, exists := s.Clients[c.ID]; !exists {
				continue
			}
			c.LastActivityTime = time.Now()
			s.dispatch(c, event.Message)

		case WakeUpEvent:
			s.checkAndPingClients()

		case RehashEvent:
			s.rehash()

		case ShutdownEvent:
			s.shutdown()
		}

		if s.shuttingDown && len(s.Clients) == 0 {
			return
		}
	}
}

// shutdown tells every client goodbye. The event loop notices Clients has
// emptied out and returns on its own.
func (s *Server) shutdown() {
	s.shuttingDown = true

	for _, c := range s.Clients {
		c.quit("Server shutting down")
	}
}

// rehash reloads the configuration file in place, if one was given at
// startup. Listener addresses are not re-read; those only take effect on
// restart.
func (s *Server) rehash() {
	if s.ConfigPath == "" {
		log.Printf("rehash requested but no configuration file was given")
		return
	}

	cfg, err := loadConfig(s.ConfigPath)
	if err != nil {
		log.Printf("rehash failed: %s", err)
		return
	}

	cfg.ListenHost = s.Config.ListenHost
	cfg.ListenPort = s.Config.ListenPort
	cfg.TLSListenPort = s.Config.TLSListenPort
	cfg.CertFile = s.Config.CertFile
	cfg.KeyFile = s.Config.KeyFile

	s.Config = cfg
	log.Printf("rehash complete")
}
