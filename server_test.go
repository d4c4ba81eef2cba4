package main

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockircd.dev/server/internal/ircclient"
	"mockircd.dev/server/internal/ircwire"
)

// startTestServer starts a server on a loopback port and returns its
// address.
func startTestServer(t *testing.T) string {
	t.Helper()

	cfg := defaultConfig()
	cfg.PingTime = time.Hour
	cfg.PingFrequency = time.Hour
	cfg.DeadTime = time.Hour

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(cfg, "")
	go func() {
		_ = s.start([]net.Listener{ln})
	}()

	return ln.Addr().String()
}

// dialClient connects, registers, and drains the client's error channel to
// the test log so a broken connection shows up without failing silently.
func dialClient(t *testing.T, addr, nick string) (*ircclient.Client, <-chan ircwire.Message, chan<- ircwire.Message) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.ParseUint(portStr, 10, 16)
	require.NoError(t, err)

	c := ircclient.NewClient(nick, host, uint16(port))
	recv, send, errc, err := c.Start()
	require.NoError(t, err)

	go func() {
		for e := range errc {
			t.Logf("client %s error: %s", nick, e)
		}
	}()

	return c, recv, send
}

// waitForCommand drains recv until it sees a message with the given
// command, failing the test if none arrives before the deadline.
func waitForCommand(t *testing.T, recv <-chan ircwire.Message, command string) ircwire.Message {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case m, ok := <-recv:
			if !ok {
				t.Fatalf("receive channel closed waiting for %s", command)
			}
			if m.Command == command {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", command)
		}
	}
}

func TestRegistrationReceivesWelcome(t *testing.T) {
	addr := startTestServer(t)

	c, recv, _ := dialClient(t, addr, "alice")
	defer c.Stop()

	m := waitForCommand(t, recv, ircwire.ReplyWelcome)
	require.Contains(t, m.Params[len(m.Params)-1], "alice")
}

func TestJoinAndPrivmsg(t *testing.T) {
	addr := startTestServer(t)

	alice, aliceRecv, aliceSend := dialClient(t, addr, "alice")
	defer alice.Stop()
	bob, bobRecv, bobSend := dialClient(t, addr, "bob")
	defer bob.Stop()

	waitForCommand(t, aliceRecv, ircwire.ReplyWelcome)
	waitForCommand(t, bobRecv, ircwire.ReplyWelcome)

	aliceSend <- ircwire.Message{Command: "JOIN", Params: []string{"#general"}}
	waitForCommand(t, aliceRecv, "JOIN")

	bobSend <- ircwire.Message{Command: "JOIN", Params: []string{"#general"}}
	waitForCommand(t, bobRecv, "JOIN")

	// Alice should also see bob's join.
	joinMsg := waitForCommand(t, aliceRecv, "JOIN")
	require.Equal(t, "#general", joinMsg.Params[0])

	bobSend <- ircwire.Message{Command: "PRIVMSG", Params: []string{"#general", "hello"}}
	privmsg := waitForCommand(t, aliceRecv, "PRIVMSG")
	require.Equal(t, []string{"#general", "hello"}, privmsg.Params)
}

func TestChannelOperatorCanKick(t *testing.T) {
	addr := startTestServer(t)

	alice, aliceRecv, aliceSend := dialClient(t, addr, "alice")
	defer alice.Stop()
	bob, bobRecv, bobSend := dialClient(t, addr, "bob")
	defer bob.Stop()

	waitForCommand(t, aliceRecv, ircwire.ReplyWelcome)
	waitForCommand(t, bobRecv, ircwire.ReplyWelcome)

	aliceSend <- ircwire.Message{Command: "JOIN", Params: []string{"#ops"}}
	waitForCommand(t, aliceRecv, "JOIN")

	bobSend <- ircwire.Message{Command: "JOIN", Params: []string{"#ops"}}
	waitForCommand(t, bobRecv, "JOIN")
	waitForCommand(t, aliceRecv, "JOIN")

	// Alice, as the first joiner, is channel operator and may kick bob.
	aliceSend <- ircwire.Message{Command: "KICK", Params: []string{"#ops", "bob", "bye"}}
	kickMsg := waitForCommand(t, bobRecv, "KICK")
	require.Equal(t, "bob", kickMsg.Params[1])
}
