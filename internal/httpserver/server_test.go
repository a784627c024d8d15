package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/tally/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, conf session.Config) (*Server, *session.Store, *gin.Engine) {
	t.Helper()
	store := session.NewStore(conf)

	srv := NewServer("", store)
	srv.startTime = time.Now()

	r := gin.New()
	r.Use(gin.Recovery())
	srv.routes(r)

	return srv, store, r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type sessionBody struct {
	Session  session.Session `json:"session"`
	Displays []string        `json:"displays"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %s: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, store, r := newTestServer(t, session.Config{})
	store.Create()

	w := do(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
	if body["sessions"] != float64(1) {
		t.Errorf("sessions = %v, want 1", body["sessions"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, _, r := newTestServer(t, session.Config{})

	w := do(t, r, http.MethodPost, "/api/health", "")
	// Gin returns 404 unless HandleMethodNotAllowed is set.
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestEvalEndpoint(t *testing.T) {
	_, _, r := newTestServer(t, session.Config{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"string keys", `{"keys": "7 + 3 ="}`, "10"},
		{"array keys", `{"keys": ["1", "÷", "4", "="]}`, "0.25"},
		{"compact string", `{"keys": "50%"}`, "0.5"},
		{"division by zero", `{"keys": "1/0="}`, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/eval", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("eval status = %d; body: %s", w.Code, w.Body.String())
			}
			var body struct {
				Display string `json:"display"`
			}
			decode(t, w, &body)
			if body.Display != tt.want {
				t.Fatalf("display = %q, want %q", body.Display, tt.want)
			}
		})
	}
}

func TestEvalEndpoint_BadRequests(t *testing.T) {
	_, _, r := newTestServer(t, session.Config{})

	for _, body := range []string{
		`{}`,
		`not json`,
		`{"keys": 42}`,
		`{"keys": "7 + sqrt"}`,
		`{"keys": null}`,
		`{"keys": ""}`,
		`{"keys": "   "}`,
		`{"keys": []}`,
	} {
		w := do(t, r, http.MethodPost, "/api/eval", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("eval %s status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, store, r := newTestServer(t, session.Config{})

	w := do(t, r, http.MethodPost, "/api/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body: %s", w.Code, w.Body.String())
	}
	var created sessionBody
	decode(t, w, &created)
	id := created.Session.ID
	if id == "" {
		t.Fatal("created session has no id")
	}

	w = do(t, r, http.MethodPost, "/api/sessions/"+id+"/keys", `{"keys": "6 ×"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("press status = %d; body: %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/sessions/"+id+"/keys", `{"keys": ["7", "="]}`)
	var pressed sessionBody
	decode(t, w, &pressed)
	if len(pressed.Displays) != 2 || pressed.Displays[1] != "42" {
		t.Fatalf("displays = %v, want [7 42]", pressed.Displays)
	}

	w = do(t, r, http.MethodGet, "/api/sessions/"+id, "")
	var got sessionBody
	decode(t, w, &got)
	if got.Session.State.Display != "42" || got.Session.State.Accumulator != 42 {
		t.Fatalf("session state = %+v", got.Session.State)
	}

	w = do(t, r, http.MethodDelete, "/api/sessions/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if store.Len() != 0 {
		t.Fatalf("store has %d sessions after delete", store.Len())
	}
}

func TestSessionEndpoints_NotFound(t *testing.T) {
	_, _, r := newTestServer(t, session.Config{})

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/sessions/missing", ""},
		{http.MethodPost, "/api/sessions/missing/keys", `{"keys": "1"}`},
		{http.MethodDelete, "/api/sessions/missing", ""},
	}
	for _, tc := range cases {
		w := do(t, r, tc.method, tc.path, tc.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want %d", tc.method, tc.path, w.Code, http.StatusNotFound)
		}
	}
}

func TestSessionEndpoints_BadKeysLeaveStateUntouched(t *testing.T) {
	_, store, r := newTestServer(t, session.Config{})
	sess, _ := store.Create()

	for _, body := range []string{`{"keys": "9 ? 9"}`, `{"keys": null}`} {
		w := do(t, r, http.MethodPost, "/api/sessions/"+sess.ID+"/keys", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("press %s status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
	got, _ := store.Get(sess.ID)
	if got.State.Display != "0" {
		t.Fatalf("display = %q after rejected keys, want 0", got.State.Display)
	}
}

func TestCreateSession_Limit(t *testing.T) {
	_, _, r := newTestServer(t, session.Config{MaxSessions: 1})

	if w := do(t, r, http.MethodPost, "/api/sessions", ""); w.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/sessions", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second create status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", session.NewStore(session.Config{}))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer gin.SetMode(gin.TestMode)

	resp, err := http.Post("http://"+srv.Addr()+"/api/eval", "application/json", bytes.NewBufferString(`{"keys": "2+2="}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestNewServer_DefaultLocalhostAddress(t *testing.T) {
	s := NewServer("", nil)
	if got := s.Addr(); got != "127.0.0.1:3000" {
		t.Fatalf("Addr() = %q, want %q", got, "127.0.0.1:3000")
	}
}
