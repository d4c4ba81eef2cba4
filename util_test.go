package main

import "testing"

func TestCanonicalizeNick(t *testing.T) {
	if got := canonicalizeNick("Foo_Bar"); got != "FOO_BAR" {
		t.Fatalf("got %q, want FOO_BAR", got)
	}
}

func TestCanonicalizeChannel(t *testing.T) {
	if got := canonicalizeChannel("#general"); got != "#GENERAL" {
		t.Fatalf("got %q, want #GENERAL", got)
	}
}

func TestIsValidNick(t *testing.T) {
	cases := []struct {
		nick string
		want bool
	}{
		{"al", true},
		{"al_ice", true},
		{"[alice]", true},
		{"9alice", false},
		{"al ice", false},
		{"", false},
		{"averylongnickname", false},
	}

	for _, c := range cases {
		if got := isValidNick(9, c.nick); got != c.want {
			t.Errorf("isValidNick(9, %q) = %v, want %v", c.nick, got, c.want)
		}
	}
}

func TestIsValidChannel(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"#general", true},
		{"general", false},
		{"#", false},
		{"#has space", false},
	}

	for _, c := range cases {
		if got := isValidChannel(c.name); got != c.want {
			t.Errorf("isValidChannel(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
