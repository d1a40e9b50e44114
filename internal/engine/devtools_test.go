package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/robertkrimen/otto"
)

// hangMarker makes the DevTools server leave an evaluation unanswered.
const hangMarker = "while (true)"

// devTools is a minimal DevTools websocket endpoint. It answers the
// commands chromedp sends while creating and attaching tabs, and evaluates
// Runtime.evaluate expressions with otto.
type devTools struct {
	srv *httptest.Server

	targets atomic.Int64
	evals   atomic.Int64
}

type cdpMessage struct {
	ID        int64           `json:"id"`
	Method    string          `json:"method"`
	SessionID string          `json:"sessionId,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

type cdpResponse struct {
	ID        int64  `json:"id"`
	SessionID string `json:"sessionId,omitempty"`
	Result    any    `json:"result"`
}

func newDevTools(t *testing.T) *devTools {
	t.Helper()
	d := &devTools{}
	d.srv = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.srv.Close)
	return d
}

// URL returns the websocket debugger URL.
func (d *devTools) URL() string {
	return "ws" + strings.TrimPrefix(d.srv.URL, "http") + "/devtools/browser/fake"
}

func (d *devTools) serve(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		return
	}
	defer conn.Close()

	var mu sync.Mutex
	for {
		data, err := wsutil.ReadClientText(conn)
		if err != nil {
			return
		}
		var msg cdpMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		result, ok := d.handle(msg)
		if !ok {
			continue
		}
		out, err := json.Marshal(cdpResponse{ID: msg.ID, SessionID: msg.SessionID, Result: result})
		if err != nil {
			continue
		}
		mu.Lock()
		err = wsutil.WriteServerText(conn, out)
		mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (d *devTools) handle(msg cdpMessage) (any, bool) {
	switch msg.Method {
	case "Target.createTarget":
		return map[string]any{"targetId": fmt.Sprintf("T%d", d.targets.Add(1))}, true
	case "Target.attachToTarget":
		var p struct {
			TargetID string `json:"targetId"`
		}
		_ = json.Unmarshal(msg.Params, &p)
		return map[string]any{"sessionId": "S-" + p.TargetID}, true
	case "Runtime.evaluate":
		var p struct {
			Expression string `json:"expression"`
		}
		_ = json.Unmarshal(msg.Params, &p)
		if p.Expression == "self" {
			return map[string]any{"result": map[string]any{"type": "object", "className": "Window"}}, true
		}
		d.evals.Add(1)
		if strings.Contains(p.Expression, hangMarker) {
			return nil, false
		}
		return evaluateExpression(p.Expression), true
	default:
		return map[string]any{}, true
	}
}

// evaluateExpression builds a Runtime.evaluate result the way Chrome does.
func evaluateExpression(expr string) map[string]any {
	value, err := otto.New().Run(expr)
	if err != nil {
		exception := map[string]any{"type": "object", "subtype": "error", "description": err.Error()}
		return map[string]any{
			"result": exception,
			"exceptionDetails": map[string]any{
				"exceptionId":  1,
				"text":         "Uncaught",
				"lineNumber":   0,
				"columnNumber": 0,
				"exception":    exception,
			},
		}
	}

	switch {
	case value.IsString():
		return map[string]any{"result": map[string]any{"type": "string", "value": value.String()}}
	case value.IsNumber():
		f, _ := value.ToFloat()
		return map[string]any{"result": map[string]any{"type": "number", "value": f}}
	case value.IsUndefined():
		return map[string]any{"result": map[string]any{"type": "undefined"}}
	default:
		return map[string]any{"result": map[string]any{"type": "object"}}
	}
}
