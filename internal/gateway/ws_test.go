package gateway

import (
	"fmt"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/loreweaver/loom/internal/weaver"
	"github.com/loreweaver/loom/pkg/weave"
)

// wsFrame is the union of the two response shapes the stream can carry.
type wsFrame struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

func TestWS_PromptRoundTrip(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{reply: "once upon a time"}
	_, srv := newTestGateway(t, engine, nil)

	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/prompt"
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(t.Context(), conn, weave.PromptRequest{
		WeavingID: "weaving-1",
		Message:   "hello",
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame wsFrame
	if err := wsjson.Read(t.Context(), conn, &frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Error != "" {
		t.Fatalf("unexpected error frame: %q", frame.Error)
	}
	if frame.Reply != "once upon a time" {
		t.Fatalf("Reply = %q", frame.Reply)
	}

	_ = conn.Close(websocket.StatusNormalClosure, "done")
}

func TestWS_EngineErrorKeepsConnection(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{err: fmt.Errorf("%w: boom", weaver.ErrPromptFailed)}
	_, srv := newTestGateway(t, engine, nil)

	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/prompt"
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(t.Context(), conn, weave.PromptRequest{
		WeavingID: "weaving-1",
		Message:   "hello",
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame wsFrame
	if err := wsjson.Read(t.Context(), conn, &frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Error == "" {
		t.Fatalf("expected error frame, got %+v", frame)
	}

	// The stream survives an engine failure: a second exchange works.
	engine.mu.Lock()
	engine.err = nil
	engine.reply = "recovered"
	engine.mu.Unlock()

	if err := wsjson.Write(t.Context(), conn, weave.PromptRequest{
		WeavingID: "weaving-1",
		Message:   "again",
	}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := wsjson.Read(t.Context(), conn, &frame); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if frame.Reply != "recovered" {
		t.Fatalf("second Reply = %q", frame.Reply)
	}

	_ = conn.Close(websocket.StatusNormalClosure, "done")
}

func TestWS_ValidationError(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, &stubEngine{reply: "ok"}, nil)

	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/prompt"
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(t.Context(), conn, weave.PromptRequest{Message: "no id"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame wsFrame
	if err := wsjson.Read(t.Context(), conn, &frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(frame.Error, "weaving_id") {
		t.Fatalf("error frame = %+v", frame)
	}

	_ = conn.Close(websocket.StatusNormalClosure, "done")
}
