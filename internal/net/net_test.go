package net

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CircuiPlanner/internal/state"
)

func snapshot(rev uint64) Snapshot {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 2, color.NRGBA{R: 255, A: 255})
	return Snapshot{Image: img, Revision: rev, PixelSize: 5}
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	hub.Publish(snapshot(1))
	srv := httptest.NewServer(NewServer(hub))
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestExportPNG(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/export.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 15), img.Bounds())
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
	r, _, _, a := img.At(1*5+2, 2*5+2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestExportScaleParam(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/export.png?scale=1")
	require.NoError(t, err)
	img, err := png.Decode(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	for _, bad := range []string{"0", "-2", "abc", "65"} {
		resp, err := http.Get(srv.URL + "/export.png?scale=" + bad)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestExportNotModified(t *testing.T) {
	hub, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/export.png")
	require.NoError(t, err)
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/export.png", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	hub.Publish(snapshot(2))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGridJSON(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/grid.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info GridInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, GridInfo{
		Session:   state.SessionID(),
		Cols:      4,
		Rows:      3,
		Revision:  1,
		PixelSize: 5,
	}, info)
}

func TestOnlyGetIsRouted(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/export.png", "image/png", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestEventsFeed(t *testing.T) {
	hub, srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, Event{Type: "revision", Revision: 1}, readEvent(t, conn))
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	// Same revision: nothing is sent.
	hub.Publish(snapshot(1))
	hub.Publish(snapshot(4))
	assert.Equal(t, Event{Type: "revision", Revision: 4}, readEvent(t, conn))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	c := &client{send: make(chan []byte, 1)}
	hub.clients[c] = true

	done := make(chan struct{})
	go func() {
		for rev := uint64(1); rev <= 10; rev++ {
			hub.Publish(Snapshot{Image: image.NewNRGBA(image.Rect(0, 0, 1, 1)), Revision: rev})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full client buffer")
	}
	assert.Len(t, c.send, 1)
}

func TestPortOf(t *testing.T) {
	port, err := portOf(":8989")
	require.NoError(t, err)
	assert.Equal(t, 8989, port)

	_, err = portOf("8989")
	assert.Error(t, err)
	_, err = portOf("localhost:http")
	assert.Error(t, err)
}

func TestNewService(t *testing.T) {
	svc, err := newService("bench", 8989, []net.IP{net.IPv4(192, 168, 1, 20)}, []string{"session=abc"})
	require.NoError(t, err)
	assert.Equal(t, serviceType, svc.Service)
	assert.Equal(t, 8989, svc.Port)
	assert.Equal(t, []string{"session=abc"}, svc.TXT)
}

func TestPeerOf(t *testing.T) {
	p, ok := peerOf(&mdns.ServiceEntry{
		Name:       "bench." + serviceType + ".local.",
		AddrV4:     net.IPv4(192, 168, 1, 20),
		Port:       8989,
		InfoFields: []string{"CircuiPlanner", "session=abc"},
	})
	require.True(t, ok)
	assert.Equal(t, Peer{Name: "bench", Addr: "192.168.1.20:8989", Session: "abc"}, p)
	assert.Equal(t, "http://192.168.1.20:8989/", p.URL())

	_, ok = peerOf(&mdns.ServiceEntry{Name: "x", Port: 1})
	assert.False(t, ok)
	_, ok = peerOf(nil)
	assert.False(t, ok)
}

func TestShareURL(t *testing.T) {
	url, err := ShareURL("[::]:8989")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://"), url)
	assert.True(t, strings.HasSuffix(url, ":8989/"), url)

	_, err = ShareURL("nope")
	assert.Error(t, err)
}
