package ircwire

import (
	"strings"
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Message
		wantErr bool
	}{
		{
			name:  "simple command no params",
			input: "PING\r\n",
			want:  Message{Command: "PING"},
		},
		{
			name:  "command with middle params",
			input: "USER alice 0 * :Alice A\r\n",
			want: Message{
				Command: "USER",
				Params:  []string{"alice", "0", "*", "Alice A"},
			},
		},
		{
			name:  "prefixed message",
			input: ":alice!alice@host PRIVMSG #x :hi there\r\n",
			want: Message{
				Prefix:  "alice!alice@host",
				Command: "PRIVMSG",
				Params:  []string{"#x", "hi there"},
			},
		},
		{
			name:  "lower cased command is upper cased",
			input: "ping\r\n",
			want:  Message{Command: "PING"},
		},
		{
			name:  "bare LF tolerated",
			input: "NICK bob\n",
			want:  Message{Command: "NICK", Params: []string{"bob"}},
		},
		{
			name:  "empty trailing is a distinct empty param",
			input: "TOPIC #x :\r\n",
			want:  Message{Command: "TOPIC", Params: []string{"#x", ""}},
		},
		{
			name:    "no command",
			input:   " \r\n",
			wantErr: true,
		},
		{
			name:    "no CRLF or LF",
			input:   "PING",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMessage(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got.Prefix != tt.want.Prefix || got.Command != tt.want.Command ||
				!equalParams(got.Params, tt.want.Params) {
				t.Fatalf("got %#v want %#v", got, tt.want)
			}
		})
	}
}

func TestParseMessageLineTooLong(t *testing.T) {
	line := "PRIVMSG #x :" + strings.Repeat("a", 600) + "\r\n"
	_, err := ParseMessage(line)
	if err != ErrLineTooLong {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []Message{
		{Command: "PING"},
		{Command: "PONG", Params: []string{"token"}},
		{Prefix: "srv", Command: "001", Params: []string{"alice", "Welcome to the network"}},
		{Prefix: "alice!alice@host", Command: "PRIVMSG", Params: []string{"#x", "hi there"}},
		{Command: "TOPIC", Params: []string{"#x", ""}},
	}

	for _, m := range tests {
		encoded, err := m.Encode()
		if err != nil {
			t.Fatalf("encode error: %s", err)
		}

		decoded, err := ParseMessage(encoded)
		if err != nil {
			t.Fatalf("parse error: %s", err)
		}

		if decoded.Prefix != m.Prefix || decoded.Command != m.Command ||
			!equalParams(decoded.Params, m.Params) {
			t.Fatalf("round trip mismatch: got %#v want %#v", decoded, m)
		}
	}
}

func TestEncodeTooManyParams(t *testing.T) {
	m := Message{Command: "X", Params: make([]string, 16)}
	if _, err := m.Encode(); err == nil {
		t.Fatalf("expected error for too many params")
	}
}

func TestSourceNick(t *testing.T) {
	m := Message{Prefix: "alice!alice@host"}
	if got := m.SourceNick(); got != "alice" {
		t.Fatalf("got %q want alice", got)
	}

	m = Message{Prefix: "irc.example.org"}
	if got := m.SourceNick(); got != "" {
		t.Fatalf("got %q want empty", got)
	}
}

func equalParams(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
