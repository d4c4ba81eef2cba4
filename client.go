package main

import (
	"fmt"
	"log"
	"time"

	"mockircd.dev/server/internal/ircwire"
)

// Client holds state about a single client connection.
type Client struct {
	// Conn holds the TCP (or TLS) connection to the client.
	Conn Conn

	// WriteChan is the channel to send to in order to write to the client.
	// The writer goroutine owns draining it; the event loop only ever sends,
	// never blocks waiting on a reply.
	WriteChan chan ircwire.Message

	// ID is a unique id, internal to this server instance only.
	ID uint64

	Server *Server

	// DisplayNick is the nick as the client gave it to us (not canonicalized).
	// Blank until NICK completes.
	DisplayNick string

	// User is the username from the USER command. Blank until USER completes.
	User string

	RealName string

	// Registered is true once both NICK and USER have completed.
	Registered bool

	// Modes holds user modes currently set, e.g. 'o' for operator.
	Modes map[byte]struct{}

	// AwayMessage is set if the client has marked itself away. Blank means
	// not away.
	AwayMessage string

	// Channels the client is on, keyed by canonicalized channel name.
	Channels map[string]*Channel

	LastActivityTime time.Time

	// LastPingTime is when we last sent this client a PING we're still
	// waiting on a PONG for.
	LastPingTime time.Time

	// AwaitingPong is true from the moment we send a liveness PING until the
	// client answers with PONG (or we give up and drop them).
	AwaitingPong bool

	// PingToken is the opaque value sent with our most recent liveness PING.
	// A PONG must echo it back; any other (or missing) token is ignored for
	// liveness purposes, so a stale PONG can't clear AwaitingPong early.
	PingToken string

	// SendQueueExceeded is set once a send to WriteChan would have blocked.
	// Once set, further sends are dropped rather than retried; the liveness
	// supervisor notices and drops the client.
	SendQueueExceeded bool

	ConnectedAt time.Time
}

// NewClient creates a Client for a freshly accepted connection.
func NewClient(s *Server, id uint64, conn Conn) *Client {
	now := time.Now()

	return &Client{
		Conn:             conn,
		WriteChan:        make(chan ircwire.Message, 100),
		ID:               id,
		Server:           s,
		Modes:            map[byte]struct{}{},
		Channels:         map[string]*Channel{},
		LastActivityTime: now,
		LastPingTime:     now,
		ConnectedAt:      now,
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("%d %s", c.ID, c.Conn.RemoteAddr())
}

// nickUhost builds the nick!user@host string used as a message prefix.
func (c *Client) nickUhost() string {
	return fmt.Sprintf("%s!~%s@%s", c.DisplayNick, c.User, c.Conn.IP)
}

func (c *Client) isOperator() bool {
	_, exists := c.Modes['o']
	return exists
}

func (c *Client) onChannel(ch *Channel) bool {
	_, exists := c.Channels[ch.Name]
	return exists
}

// readLoop endlessly reads from the client's connection, parses each IRC
// protocol message, and passes it to the server's event loop.
func (c *Client) readLoop() {
	defer c.Server.WG.Done()

	for {
		message, err := c.Conn.ReadMessage()
		if err != nil {
			log.Printf("client %s: %s", c, err)
			c.Server.newEvent(Event{Type: DeadClientEvent, Client: c})
			return
		}

		c.Server.newEvent(Event{
			Type:    MessageFromClientEvent,
			Client:  c,
			Message: message,
		})
	}
}

// writeLoop endlessly reads from the client's write channel, encodes each
// message, and writes it to the client's connection.
func (c *Client) writeLoop() {
	defer c.Server.WG.Done()

	for message := range c.WriteChan {
		if err := c.Conn.WriteMessage(message); err != nil {
			log.Printf("client %s: %s", c, err)
			c.Server.newEvent(Event{Type: DeadClientEvent, Client: c})
			break
		}
	}

	if err := c.Conn.Close(); err != nil {
		log.Printf("client %s: problem closing connection: %s", c, err)
	}
}

// maybeQueueMessage queues a message for delivery without ever blocking the
// event loop. If the client's WriteChan is full, the client is marked
// send-queue-exceeded instead of waiting for it to drain; the liveness
// supervisor drops clients in that state on its next sweep. One slow or
// wedged client must never stall delivery to every other client.
func (c *Client) maybeQueueMessage(m ircwire.Message) {
	if c.SendQueueExceeded {
		return
	}

	select {
	case c.WriteChan <- m:
	default:
		c.SendQueueExceeded = true
	}
}

// messageFromServer sends the client a message whose prefix is the server
// name. Numeric replies get the client's current nick (or "*" before
// registration) prepended as the first parameter, per convention.
func (c *Client) messageFromServer(command string, params []string) {
	isNumeric := len(command) == 3
	for _, ch := range command {
		if ch < '0' || ch > '9' {
			isNumeric = false
			break
		}
	}

	if isNumeric {
		nick := "*"
		if len(c.DisplayNick) > 0 {
			nick = c.DisplayNick
		}
		params = append([]string{nick}, params...)
	}

	c.maybeQueueMessage(ircwire.Message{
		Prefix:  c.Server.Config.ServerName,
		Command: command,
		Params:  params,
	})
}

// messageClient sends a message to another client, appearing to come from
// this client.
func (c *Client) messageClient(to *Client, command string, params []string) {
	to.maybeQueueMessage(ircwire.Message{
		Prefix:  c.nickUhost(),
		Command: command,
		Params:  params,
	})
}

// quit removes the client from all server state and tells anyone who needs
// to know, then tears down its connection.
func (c *Client) quit(msg string) {
	if c.Registered {
		toldClients := map[uint64]struct{}{}
		for _, ch := range c.Channels {
			for _, member := range ch.Members {
				if _, told := toldClients[member.ID]; told {
					continue
				}
				c.messageClient(member, "QUIT", []string{msg})
				toldClients[member.ID] = struct{}{}
			}

			if empty := ch.removeMember(c.ID); empty {
				delete(c.Server.Channels, ch.Name)
			}
		}

		if _, told := toldClients[c.ID]; !told {
			c.messageClient(c, "QUIT", []string{msg})
		}

		c.Server.WhoWas.Record(c.DisplayNick, c.User, fmt.Sprintf("%s", c.Conn.IP), c.RealName)

		delete(c.Server.Nicks, canonicalizeNick(c.DisplayNick))
		delete(c.Server.Opers, c.ID)
	} else if len(c.DisplayNick) > 0 {
		delete(c.Server.Nicks, canonicalizeNick(c.DisplayNick))
	}

	c.messageFromServer("ERROR", []string{msg})

	delete(c.Server.Clients, c.ID)

	close(c.WriteChan)
}

// completeRegistration runs once both NICK and USER have been given. It
// sends the RFC 2812 welcome burst and marks the client as registered.
func (c *Client) completeRegistration() {
	c.Registered = true

	// 001 RPL_WELCOME
	c.messageFromServer(ircwire.ReplyWelcome, []string{
		fmt.Sprintf("Welcome to the Internet Relay Network %s", c.nickUhost()),
	})

	// 002 RPL_YOURHOST
	c.messageFromServer("002", []string{
		fmt.Sprintf("Your host is %s, running version %s",
			c.Server.Config.ServerName, c.Server.Config.Version),
	})

	// 003 RPL_CREATED
	c.messageFromServer("003", []string{
		fmt.Sprintf("This server was created %s", c.Server.Config.CreatedDate),
	})

	// 004 RPL_MYINFO
	c.messageFromServer("004", []string{
		c.Server.Config.ServerName,
		c.Server.Config.Version,
		"o",
		"nto",
	})

	c.lusersCommand()
	c.motdCommand()
}
