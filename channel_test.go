package main

import "testing"

func TestChannelFirstMemberBecomesOperator(t *testing.T) {
	ch := NewChannel("#GENERAL")
	alice := &Client{ID: 1, DisplayNick: "alice"}

	ch.addMember(alice)

	if !ch.isOperator(alice.ID) {
		t.Fatalf("expected first member to become operator")
	}
}

func TestChannelOperatorSuccession(t *testing.T) {
	ch := NewChannel("#GENERAL")
	alice := &Client{ID: 1, DisplayNick: "alice"}
	bob := &Client{ID: 2, DisplayNick: "bob"}
	carol := &Client{ID: 3, DisplayNick: "carol"}

	ch.addMember(alice)
	ch.addMember(bob)
	ch.addMember(carol)

	if ch.isOperator(bob.ID) || ch.isOperator(carol.ID) {
		t.Fatalf("only the first joiner should start as operator")
	}

	if empty := ch.removeMember(alice.ID); empty {
		t.Fatalf("channel should not be empty after alice leaves")
	}

	if !ch.isOperator(bob.ID) {
		t.Fatalf("bob, the longest-standing remaining member, should be promoted")
	}
}

func TestChannelRemoveLastMemberReportsEmpty(t *testing.T) {
	ch := NewChannel("#GENERAL")
	alice := &Client{ID: 1, DisplayNick: "alice"}
	ch.addMember(alice)

	if empty := ch.removeMember(alice.ID); !empty {
		t.Fatalf("expected channel to report empty once last member leaves")
	}
}
