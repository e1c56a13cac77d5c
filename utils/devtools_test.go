package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/require"
)

const devToolsHTML = `<html><head></head><body><img src="/a.jpg"></body></html>`

// devToolsServer speaks enough of the DevTools protocol for chromedp to
// attach tabs, navigate and evaluate scripts.
type devToolsServer struct {
	server      *httptest.Server
	connections atomic.Int32

	mu        sync.Mutex
	targets   int
	locations map[string]string
}

type devToolsCommand struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"sessionId"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params"`
}

type devToolsMessage struct {
	ID        int64       `json:"id,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Method    string      `json:"method,omitempty"`
	Params    interface{} `json:"params,omitempty"`
	Result    interface{} `json:"result,omitempty"`
}

func newDevToolsServer(t *testing.T) *devToolsServer {
	t.Helper()

	d := &devToolsServer{locations: make(map[string]string)}
	d.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		d.connections.Add(1)
		go d.serve(conn)
	}))
	t.Cleanup(d.server.Close)
	return d
}

// URL returns the browser websocket endpoint
func (d *devToolsServer) URL() string {
	return "ws://" + strings.TrimPrefix(d.server.URL, "http://") + "/devtools/browser/test"
}

// fakeChrome writes an executable that announces the server and then idles
// until the allocator kills it
func (d *devToolsServer) fakeChrome(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake browser executable needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "chrome")
	script := fmt.Sprintf("#!/bin/sh\necho \"DevTools listening on %s\"\nexec sleep 60\n", d.URL())
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func (d *devToolsServer) serve(conn net.Conn) {
	defer conn.Close()

	for {
		data, err := wsutil.ReadClientText(conn)
		if err != nil {
			return
		}

		var cmd devToolsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}

		result, events := d.handle(cmd)
		messages := append([]devToolsMessage{{ID: cmd.ID, SessionID: cmd.SessionID, Result: result}}, events...)
		for _, msg := range messages {
			out, err := json.Marshal(msg)
			if err != nil {
				return
			}
			if err := wsutil.WriteServerText(conn, out); err != nil {
				return
			}
		}
	}
}

func (d *devToolsServer) handle(cmd devToolsCommand) (interface{}, []devToolsMessage) {
	empty := map[string]interface{}{}

	var params struct {
		TargetID   string `json:"targetId"`
		URL        string `json:"url"`
		Expression string `json:"expression"`
	}
	_ = json.Unmarshal(cmd.Params, &params)

	if cmd.SessionID == "" {
		switch cmd.Method {
		case "Target.setDiscoverTargets":
			return empty, []devToolsMessage{{
				Method: "Target.targetCreated",
				Params: map[string]interface{}{
					"targetInfo": map[string]interface{}{
						"targetId": "page-0",
						"type":     "page",
						"url":      "about:blank",
					},
				},
			}}
		case "Target.createTarget":
			d.mu.Lock()
			d.targets++
			id := fmt.Sprintf("page-%d", d.targets)
			d.mu.Unlock()
			return map[string]interface{}{"targetId": id}, nil
		case "Target.attachToTarget":
			return map[string]interface{}{"sessionId": "session-" + params.TargetID}, nil
		}
		return empty, nil
	}

	frameID := strings.TrimPrefix(cmd.SessionID, "session-")

	switch cmd.Method {
	case "Runtime.evaluate":
		return d.evaluate(cmd.SessionID, params.Expression), nil

	case "Page.navigate":
		if strings.Contains(params.URL, "reset") {
			return map[string]interface{}{"frameId": frameID, "errorText": "net::ERR_CONNECTION_RESET"}, nil
		}

		d.mu.Lock()
		d.locations[cmd.SessionID] = params.URL
		d.mu.Unlock()

		loaderID := "loader-" + frameID
		lifecycle := func(name string) devToolsMessage {
			return devToolsMessage{
				SessionID: cmd.SessionID,
				Method:    "Page.lifecycleEvent",
				Params: map[string]interface{}{
					"frameId":   frameID,
					"loaderId":  loaderID,
					"name":      name,
					"timestamp": 1.5,
				},
			}
		}

		events := []devToolsMessage{lifecycle("init"), lifecycle("networkAlmostIdle")}
		// pages marked idle-only never fire the load event
		if !strings.Contains(params.URL, "idle-only") {
			events = append(events, devToolsMessage{
				SessionID: cmd.SessionID,
				Method:    "Page.loadEventFired",
				Params:    map[string]interface{}{"timestamp": 1.5},
			})
		}
		return map[string]interface{}{"frameId": frameID, "loaderId": loaderID}, events
	}
	return empty, nil
}

func (d *devToolsServer) evaluate(sessionID, expression string) interface{} {
	object := func(typ string, value interface{}) interface{} {
		return map[string]interface{}{"result": map[string]interface{}{"type": typ, "value": value}}
	}

	switch expression {
	case "self":
		return map[string]interface{}{"result": map[string]interface{}{"type": "object", "className": "Window"}}
	case "1+1":
		return object("number", 2)
	case "document.location.toString()":
		d.mu.Lock()
		defer d.mu.Unlock()
		return object("string", d.locations[sessionID])
	case "document.documentElement.outerHTML":
		return object("string", devToolsHTML)
	}
	return map[string]interface{}{"result": map[string]interface{}{"type": "undefined"}}
}
