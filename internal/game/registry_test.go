package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	p := reg.Register("sock-1", Participant{Username: "alice", Icon: "avatar01.png"})

	assert.Equal(t, "sock-1", p.ID, "connection id becomes participant id")
	assert.Equal(t, SentinelSentence, p.CurrentSentence, "fresh participants carry the sentinel")
	assert.Empty(t, p.Room, "registering does not join a room")

	got, err := reg.Lookup("sock-1")
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.Equal(t, 1, reg.Count())
}

func TestRegistryLookupUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	reg.Register("sock-1", Participant{Username: "alice"})

	p, err := reg.Remove("sock-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, 0, reg.Count())

	// a duplicate disconnect is the already-left case
	_, err = reg.Remove("sock-1")
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestRegistryKeepsSubmittedSentence(t *testing.T) {
	reg := NewRegistry()
	p := reg.Register("sock-1", Participant{Username: "alice", CurrentSentence: "already typing"})
	assert.Equal(t, "already typing", p.CurrentSentence)
}
