// Package ircclient provides a minimal client for driving and observing an
// IRC server from tests or small tools.
package ircclient

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"mockircd.dev/server/internal/ircwire"
)

// Client represents a client connection to a server.
type Client struct {
	nick       string
	serverHost string
	serverPort uint16

	writeTimeout time.Duration
	readTimeout  time.Duration

	conn net.Conn
	rw   *bufio.ReadWriter

	recvChan chan ircwire.Message
	sendChan chan ircwire.Message
	errChan  chan error
	doneChan chan struct{}
	wg       sync.WaitGroup

	mutex    sync.Mutex
	channels map[string]struct{}
}

// NewClient creates a Client. It does not connect until Start is called.
func NewClient(nick, serverHost string, serverPort uint16) *Client {
	return &Client{
		nick:       nick,
		serverHost: serverHost,
		serverPort: serverPort,

		writeTimeout: 30 * time.Second,
		readTimeout:  100 * time.Millisecond,

		channels: map[string]struct{}{},
	}
}

// Start connects and registers with NICK/USER.
//
// Messages received from the server arrive on the returned receive channel.
// Send messages to the server on the returned send channel. If the client
// hits a fatal error it reports it on the returned error channel; after
// receiving on it, call Stop.
//
// The client answers PING automatically. The caller must call Stop to clean
// up.
func (c *Client) Start() (
	<-chan ircwire.Message,
	chan<- ircwire.Message,
	<-chan error,
	error,
) {
	if err := c.connect(); err != nil {
		return nil, nil, nil, fmt.Errorf("error connecting: %s", err)
	}

	if err := c.writeMessage(ircwire.Message{Command: "NICK", Params: []string{c.nick}}); err != nil {
		_ = c.conn.Close()
		return nil, nil, nil, err
	}

	if err := c.writeMessage(ircwire.Message{
		Command: "USER",
		Params:  []string{c.nick, "0", "*", c.nick},
	}); err != nil {
		_ = c.conn.Close()
		return nil, nil, nil, err
	}

	c.recvChan = make(chan ircwire.Message, 512)
	c.sendChan = make(chan ircwire.Message, 512)
	c.errChan = make(chan error, 512)
	c.doneChan = make(chan struct{})

	c.wg.Add(2)
	go c.reader()
	go c.writer()

	return c.recvChan, c.sendChan, c.errChan, nil
}

func (c *Client) connect() error {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	conn, err := dialer.Dial("tcp", fmt.Sprintf("%s:%d", c.serverHost, c.serverPort))
	if err != nil {
		return fmt.Errorf("error dialing: %s", err)
	}

	c.conn = conn
	c.rw = bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	return nil
}

func (c *Client) reader() {
	defer c.wg.Done()

	for {
		select {
		case <-c.doneChan:
			close(c.recvChan)
			return
		default:
		}

		m, err := c.readMessage()
		if err != nil {
			if strings.Contains(err.Error(), "i/o timeout") {
				continue
			}
			c.errChan <- fmt.Errorf("error reading message: %s", err)
			close(c.recvChan)
			return
		}

		if m.Command == "PING" {
			if err := c.writeMessage(ircwire.Message{Command: "PONG", Params: m.Params}); err != nil {
				c.errChan <- fmt.Errorf("error sending pong: %s", err)
				close(c.recvChan)
				return
			}
		}

		if m.Command == "JOIN" && m.SourceNick() == c.nick && len(m.Params) > 0 {
			c.mutex.Lock()
			c.channels[m.Params[0]] = struct{}{}
			c.mutex.Unlock()
		}

		if m.Command == "PART" && m.SourceNick() == c.nick && len(m.Params) > 0 {
			c.mutex.Lock()
			delete(c.channels, m.Params[0])
			c.mutex.Unlock()
		}

		c.recvChan <- m
	}
}

func (c *Client) writer() {
	defer c.wg.Done()

	for {
		select {
		case <-c.doneChan:
			for range c.sendChan {
			}
			return
		case m, ok := <-c.sendChan:
			if !ok {
				return
			}
			if err := c.writeMessage(m); err != nil {
				c.errChan <- fmt.Errorf("error writing message: %s", err)
			}
		}
	}
}

func (c *Client) writeMessage(m ircwire.Message) error {
	buf, err := m.Encode()
	if err != nil {
		return fmt.Errorf("unable to encode message: %s", err)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("unable to set deadline: %s", err)
	}

	sz, err := c.rw.WriteString(buf)
	if err != nil {
		return err
	}
	if sz != len(buf) {
		return fmt.Errorf("short write")
	}

	if err := c.rw.Flush(); err != nil {
		return fmt.Errorf("flush error: %s", err)
	}

	log.Printf("client %s: sent: %s", c.nick, strings.TrimRight(buf, "\r\n"))
	return nil
}

func (c *Client) readMessage() (ircwire.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return ircwire.Message{}, fmt.Errorf("unable to set deadline: %s", err)
	}

	line, err := c.rw.ReadString('\n')
	if err != nil {
		return ircwire.Message{}, err
	}

	log.Printf("client %s: read: %s", c.nick, strings.TrimRight(line, "\r\n"))

	return ircwire.ParseMessage(line)
}

// Stop shuts down the client and cleans up. Do not send on the send channel
// after calling this.
func (c *Client) Stop() {
	close(c.doneChan)
	close(c.sendChan)

	c.wg.Wait()

	close(c.errChan)

	_ = c.conn.Close()

	for range c.recvChan {
	}
	for range c.errChan {
	}
}

// Nick retrieves the client's nick.
func (c *Client) Nick() string { return c.nick }

// Channels retrieves the channels the client currently believes it's on.
func (c *Client) Channels() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var channels []string
	for k := range c.channels {
		channels = append(channels, k)
	}
	return channels
}
