package rpc_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/config"
	"github.com/LeJamon/goBountySplit/internal/rpc"
	jtx "github.com/LeJamon/goBountySplit/internal/testing"
	"github.com/LeJamon/goBountySplit/internal/testing/bounty"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (f *rpcFixture) dialWS() (*rpc.WebSocketServer, *wsClient) {
	f.t.Helper()
	ws := rpc.NewWebSocketServer(f.server.Registry(), f.services, config.ServerConfig{}, f.metrics, nil)
	f.svc.Publisher().AddEventHooks(rpc.NewPublisher(f.services.Subscriptions, nil).Hooks())

	ts := httptest.NewServer(ws)
	f.t.Cleanup(func() {
		ws.Close()
		ts.Close()
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { conn.Close() })
	return ws, &wsClient{t: f.t, conn: conn}
}

func (c *wsClient) send(msg map[string]interface{}) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *wsClient) read() map[string]interface{} {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until one matches, returning it and the
// messages skipped on the way.
func (c *wsClient) readUntil(match func(map[string]interface{}) bool) (map[string]interface{}, []map[string]interface{}) {
	c.t.Helper()
	var skipped []map[string]interface{}
	for i := 0; i < 10; i++ {
		msg := c.read()
		if match(msg) {
			return msg, skipped
		}
		skipped = append(skipped, msg)
	}
	c.t.Fatal("no matching message")
	return nil, nil
}

func responseWithID(id float64) func(map[string]interface{}) bool {
	return func(m map[string]interface{}) bool {
		return m["type"] == "response" && m["id"] == id
	}
}

func TestWebSocketCommand(t *testing.T) {
	f := newRPCFixture(t, false)
	_, client := f.dialWS()

	client.send(map[string]interface{}{"id": 1, "command": "ping"})
	resp := client.read()
	assert.Equal(t, "response", resp["type"])
	assert.Equal(t, float64(1), resp["id"])
	assert.Equal(t, "success", resp["status"])

	client.send(map[string]interface{}{"id": 2, "command": "no_such_method"})
	resp = client.read()
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "unknownCmd", resp["error"])
	assert.Equal(t, float64(2), resp["id"])

	client.send(map[string]interface{}{"id": 3})
	resp = client.read()
	assert.Equal(t, "missingCommand", resp["error"])
}

func TestWebSocketSubscriptions(t *testing.T) {
	f := newRPCFixture(t, false)
	ws, client := f.dialWS()
	requester := jtx.NewAccount("ws-requester")
	r1 := jtx.NewAccount("ws-r1")
	bystander := jtx.NewAccount("ws-bystander")
	bountyID := jtx.BountyID(t.Name())

	client.send(map[string]interface{}{"id": 1, "command": "subscribe", "streams": []string{"ledger"}})
	resp := client.read()
	assert.Equal(t, "malformedStream", resp["error"])

	client.send(map[string]interface{}{"id": 2, "command": "subscribe", "accounts": []string{r1.Identity.String()}})
	resp = client.read()
	require.Equal(t, "success", resp["status"], "%v", resp)
	require.Equal(t, 1, ws.ConnectionCount())
	require.Equal(t, 1, f.services.Subscriptions.ConnectionCount())

	// r1 is a recipient, so initialization reaches the account stream
	client.send(map[string]interface{}{
		"id":      3,
		"command": "submit",
		"tx_json": f.signed(requester, bounty.Initialize(requester, bountyID).Recipients(r1).Splits(10000).Build()),
	})
	resp, skipped := client.readUntil(responseWithID(3))
	require.Equal(t, "success", resp["status"], "%v", resp)
	result := resp["result"].(map[string]interface{})
	assert.Equal(t, "tesSUCCESS", result["engine_result"])

	require.Len(t, skipped, 1)
	published := skipped[0]
	assert.Equal(t, "transaction", published["type"])
	assert.Equal(t, result["tx_hash"], published["hash"])
	assert.Equal(t, "tesSUCCESS", published["engine_result"])
	events := published["events"].([]interface{})
	assert.Equal(t, "EscrowCreated", events[0].(map[string]interface{})["type"])

	// Nothing for an escrow r1 is not part of
	client.send(map[string]interface{}{
		"id":      4,
		"command": "submit",
		"tx_json": f.signed(requester, bounty.Initialize(requester, jtx.BountyID("other")).Recipients(bystander).Splits(10000).Build()),
	})
	_, skipped = client.readUntil(responseWithID(4))
	assert.Empty(t, skipped)

	// The transactions stream sees everything
	client.send(map[string]interface{}{"id": 5, "command": "subscribe", "streams": []string{"transactions"}})
	client.read()
	client.send(map[string]interface{}{
		"id":      6,
		"command": "submit",
		"tx_json": f.signed(requester, bounty.Initialize(requester, jtx.BountyID("third")).Recipients(bystander).Splits(10000).Build()),
	})
	_, skipped = client.readUntil(responseWithID(6))
	assert.Len(t, skipped, 1)

	client.send(map[string]interface{}{
		"id":       7,
		"command":  "unsubscribe",
		"streams":  []string{"transactions"},
		"accounts": []string{r1.Identity.String()},
	})
	client.read()
	client.send(map[string]interface{}{
		"id":      8,
		"command": "submit",
		"tx_json": f.signed(requester, bounty.Initialize(requester, jtx.BountyID("fourth")).Recipients(r1).Splits(10000).Build()),
	})
	_, skipped = client.readUntil(responseWithID(8))
	assert.Empty(t, skipped)
}

func TestWebSocketAdminCommands(t *testing.T) {
	f := newRPCFixture(t, false)
	_, client := f.dialWS()

	client.send(map[string]interface{}{"id": 1, "command": "wallet_propose"})
	resp := client.read()
	assert.Equal(t, "noPermission", resp["error"])
}

func TestWebSocketDisconnect(t *testing.T) {
	f := newRPCFixture(t, false)
	ws, client := f.dialWS()

	client.send(map[string]interface{}{"id": 1, "command": "subscribe", "streams": []string{"transactions"}})
	client.read()
	require.NoError(t, client.conn.Close())

	require.Eventually(t, func() bool {
		return ws.ConnectionCount() == 0 && f.services.Subscriptions.ConnectionCount() == 0
	}, 5*time.Second, 10*time.Millisecond)

	// Publishing with no subscribers is a no-op
	requester := jtx.NewAccount("ws-gone")
	result := f.submit(requester, bounty.Initialize(requester, jtx.BountyID(t.Name())).
		Recipients(jtx.NewAccount("ws-gone-r1")).Splits(10000).Build())
	requireSuccess(t, result)
}
