package rpc_types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func testIdentity(b byte) types.Identity {
	var id types.Identity
	id[0] = 0x02
	id[1] = b
	return id
}

func TestBroadcastDeliversOnce(t *testing.T) {
	sm := NewSubscriptionManager()
	conn := NewConnection("a", 4)
	sm.AddConnection(conn)
	alice := testIdentity(1)

	require.Nil(t, sm.HandleSubscribe("a", SubscriptionRequest{
		Streams:  []SubscriptionType{SubTransactions},
		Accounts: []string{alice.String()},
	}))

	sm.Broadcast(SubTransactions, []types.Identity{alice}, []byte("x"))
	assert.Len(t, conn.SendChannel, 1)
	assert.Equal(t, 1, sm.GetSubscriberCount(SubTransactions))
	assert.True(t, sm.IsSubscribed("a", SubTransactions))
}

func TestSubscribeIsAllOrNothing(t *testing.T) {
	sm := NewSubscriptionManager()
	sm.AddConnection(NewConnection("a", 1))

	err := sm.HandleSubscribe("a", SubscriptionRequest{
		Streams:  []SubscriptionType{SubTransactions},
		Accounts: []string{"not-hex"},
	})
	require.NotNil(t, err)
	assert.Equal(t, "actMalformed", err.ErrorString)
	assert.False(t, sm.IsSubscribed("a", SubTransactions))

	err = sm.HandleSubscribe("a", SubscriptionRequest{Streams: []SubscriptionType{"ledger"}})
	require.NotNil(t, err)
	assert.Equal(t, RpcSTREAM_MALFORMED, err.Code)

	err = sm.HandleSubscribe("missing", SubscriptionRequest{Streams: []SubscriptionType{SubTransactions}})
	require.NotNil(t, err)
}

func TestBroadcastDropsForFullBuffer(t *testing.T) {
	sm := NewSubscriptionManager()
	conn := NewConnection("slow", 1)
	sm.AddConnection(conn)
	var dropped []string
	sm.OnDrop = func(id string) { dropped = append(dropped, id) }
	require.Nil(t, sm.HandleSubscribe("slow", SubscriptionRequest{Streams: []SubscriptionType{SubServer}}))

	sm.Broadcast(SubServer, nil, []byte("1"))
	sm.Broadcast(SubServer, nil, []byte("2"))
	assert.Equal(t, []string{"slow"}, dropped)
	assert.Equal(t, []byte("1"), <-conn.SendChannel)

	// Other streams are not delivered
	sm.Broadcast(SubTransactions, nil, []byte("3"))
	assert.Empty(t, conn.SendChannel)

	sm.RemoveConnection("slow")
	assert.Zero(t, sm.ConnectionCount())
}

func TestUnsubscribe(t *testing.T) {
	sm := NewSubscriptionManager()
	conn := NewConnection("a", 1)
	sm.AddConnection(conn)
	bob := testIdentity(2)

	require.Nil(t, sm.HandleSubscribe("a", SubscriptionRequest{Accounts: []string{bob.String()}}))
	require.Nil(t, sm.HandleUnsubscribe("a", SubscriptionRequest{Accounts: []string{bob.String()}}))

	sm.Broadcast(SubTransactions, []types.Identity{bob}, []byte("x"))
	assert.Empty(t, conn.SendChannel)
}
