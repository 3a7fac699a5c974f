package notify

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}

	registry.Register(1, addr)
	assert.Equal(t, 1, registry.Len())

	client, ok := registry.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, uint(1), client.UserID)
	assert.Equal(t, addr, client.Addr)

	// Re-registering replaces the address.
	other := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8888}
	registry.Register(1, other)
	assert.Equal(t, 1, registry.Len())
	client, _ = registry.Lookup(1)
	assert.Equal(t, other, client.Addr)

	registry.Remove(1)
	assert.Zero(t, registry.Len())
	_, ok = registry.Lookup(1)
	assert.False(t, ok)
}

func TestRegistry_IgnoresInvalidInput(t *testing.T) {
	registry := NewRegistry()

	registry.Register(0, &net.UDPAddr{})
	registry.Register(1, nil)

	assert.Zero(t, registry.Len())
}

func TestParseRegisterMessage(t *testing.T) {
	msg, err := parseRegisterMessage([]byte(`{"type": "register", "user_id": 7}`))

	require.NoError(t, err)
	assert.Equal(t, RegisterMessageType, msg.Type)
	assert.Equal(t, uint(7), msg.UserID)
}

func TestParseRegisterMessage_Invalid(t *testing.T) {
	_, err := parseRegisterMessage([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseRegisterMessage([]byte(`{"type": "register"}`))
	assert.Error(t, err)

	_, err = parseRegisterMessage([]byte(`{"user_id": 7}`))
	assert.Error(t, err)
}

func TestServer_RegisterAndNotify(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	server := NewServer("127.0.0.1:0", NewRegistry(), log)

	// A client socket that will both register and receive.
	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer clientConn.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()
	defer server.Close()

	// Wait for the server socket to come up.
	var serverAddr *net.UDPAddr
	require.Eventually(t, func() bool {
		server.mu.Lock()
		defer server.mu.Unlock()
		if server.conn == nil {
			return false
		}
		serverAddr = server.conn.LocalAddr().(*net.UDPAddr)
		return true
	}, time.Second, 10*time.Millisecond)

	_, err = clientConn.WriteToUDP([]byte(`{"type": "register", "user_id": 3}`), serverAddr)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.registry.Len() == 1
	}, time.Second, 10*time.Millisecond)

	server.NotifyEpisode(NewEpisodeMessage{
		MALID:     21,
		Title:     "One Piece",
		Broadcast: "Sundays at 09:30 (JST)",
	}, []uint{3, 42}) // user 42 has no client and is skipped

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	buffer := make([]byte, 2048)
	n, _, err := clientConn.ReadFromUDP(buffer)
	require.NoError(t, err)

	var msg NewEpisodeMessage
	require.NoError(t, json.Unmarshal(buffer[:n], &msg))
	assert.Equal(t, NewEpisodeMessageType, msg.Type)
	assert.Equal(t, 21, msg.MALID)
	assert.Equal(t, "One Piece", msg.Title)

	server.Close()
	assert.NoError(t, <-errCh) // Run exits cleanly once the socket closes
}
