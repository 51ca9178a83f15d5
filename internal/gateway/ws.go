package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/loreweaver/loom/pkg/weave"
)

// handleWS returns an http.HandlerFunc for GET /ws/prompt. Each connection
// carries a sequence of prompt requests; every request gets exactly one
// response frame, either a reply or an error body. Engine failures keep
// the connection open, transport failures close it.
func (g *Gateway) handleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Debug("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		for {
			var req weave.PromptRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
					errors.Is(err, context.Canceled) {
					return
				}
				g.logger.Debug("websocket read failed", "error", err)
				return
			}

			reply, err := g.prompt(ctx, req)
			if err != nil {
				if werr := wsjson.Write(ctx, conn, weave.ErrorResponse{Error: err.Error()}); werr != nil {
					return
				}
				continue
			}

			if err := wsjson.Write(ctx, conn, weave.PromptResponse{Reply: reply}); err != nil {
				return
			}
		}
	}
}
