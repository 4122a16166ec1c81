package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"kitten-defense/internal/database"
	"kitten-defense/internal/game"
	"kitten-defense/internal/protocol"
	"kitten-defense/internal/sim"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type testEnv struct {
	server *Server
	reg    *game.Registry
	roster *sim.Roster
	loop   *sim.Loop
}

func newTestEnv(t *testing.T, cfg Config, db *database.DB) *testEnv {
	t.Helper()
	reg, err := game.NewRegistry(game.DefaultConfig(), game.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	roster := sim.NewRoster()
	loop := sim.NewLoop(reg, roster, sim.LoopConfig{Logger: quietLogger()})

	s, err := New(cfg, Deps{
		Registry: reg,
		Roster:   roster,
		Loop:     loop,
		DB:       db,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return &testEnv{server: s, reg: reg, roster: roster, loop: loop}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode %q: %v", w.Body.String(), err)
	}
}

func TestNewRequiresRegistryAndRoster(t *testing.T) {
	if _, err := New(Config{}, Deps{}); err == nil {
		t.Error("Expected error without registry and roster")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)

	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestHealthWithDatabase(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "health.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	env := newTestEnv(t, Config{}, db)
	if w := env.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 with open database, got %d", w.Code)
	}

	db.Close()
	if w := env.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 with closed database, got %d", w.Code)
	}
}

func TestTerritoryEndpoints(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)

	create := protocol.CreateTerritoryPayload{
		TerritoryID: "den",
		Position:    game.Vector3{X: 10, Z: 10},
		Type:        game.TerritoryResidential,
	}

	t.Run("create", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/territories", create)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var state protocol.TerritoryStatePayload
		decode(t, w, &state)
		if state.Territory.ID != "den" || state.Territory.Owner != "" {
			t.Errorf("Expected unclaimed den, got %+v", state.Territory)
		}
		if state.State != "uncontested" {
			t.Errorf("Expected uncontested, got %s", state.State)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/territories", create)
		if w.Code != http.StatusConflict {
			t.Fatalf("Expected 409, got %d", w.Code)
		}
		var e protocol.ErrorPayload
		decode(t, w, &e)
		if e.Code != protocol.ErrCodeDuplicateTerritory {
			t.Errorf("Expected %s, got %s", protocol.ErrCodeDuplicateTerritory, e.Code)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		bad := create
		bad.TerritoryID = "attic"
		bad.Type = "castle"
		if w := env.do(t, http.MethodPost, "/api/territories", bad); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/territories", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		if w := env.do(t, http.MethodGet, "/api/territories/den", nil); w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if w := env.do(t, http.MethodGet, "/api/territories/attic", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/territories", nil)
		var list protocol.TerritoryListPayload
		decode(t, w, &list)
		if len(list.Territories) != 1 {
			t.Errorf("Expected 1 territory, got %d", len(list.Territories))
		}
	})

	t.Run("at", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/territories/at?x=12&z=8", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var state protocol.TerritoryStatePayload
		decode(t, w, &state)
		if state.Territory.ID != "den" {
			t.Errorf("Expected den, got %s", state.Territory.ID)
		}

		if w := env.do(t, http.MethodGet, "/api/territories/at?x=900&z=900", nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 far away, got %d", w.Code)
		}
		if w := env.do(t, http.MethodGet, "/api/territories/at?x=abc", nil); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for bad coordinate, got %d", w.Code)
		}
	})
}

func TestReportUnitsFeedsNextTick(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	if _, err := env.reg.CreateTerritory("den", game.Vector3{}, game.TerritoryResidential); err != nil {
		t.Fatalf("Failed to create territory: %v", err)
	}

	units := protocol.ReportUnitsPayload{Units: []game.Unit{
		{ID: "u1", Owner: "kittens", Role: game.RoleHeavy, Position: game.Vector3{X: 1}},
	}}
	w := env.do(t, http.MethodPost, "/api/territories/den/units", units)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/territories/attic/units", units); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown territory, got %d", w.Code)
	}

	env.loop.Step()

	den, _ := env.reg.GetTerritory("den")
	if len(den.InfluenceZones) != 1 || den.InfluenceZones[0].Owner != "kittens" {
		t.Fatalf("Expected one kittens zone, got %+v", den.InfluenceZones)
	}
	if den.CaptureProgress != 1 {
		t.Errorf("Expected capture progress 1, got %d", den.CaptureProgress)
	}

	// Reports are consumed by the tick.
	env.loop.Step()
	den, _ = env.reg.GetTerritory("den")
	if len(den.InfluenceZones) != 0 {
		t.Errorf("Expected no zones after reports were consumed, got %d", len(den.InfluenceZones))
	}
}

func TestHistoryRequiresDatabase(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	for _, path := range []string{"/api/territories/den/history", "/api/ledger/totals"} {
		if w := env.do(t, http.MethodGet, path, nil); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, w.Code)
		}
	}
}

func TestHistoryAndLedger(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	match, err := db.CreateMatch("test", "meadow", game.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create match: %v", err)
	}
	ev := game.CaptureEvent{TerritoryID: "den", NewOwner: "kittens", TerritoryType: game.TerritoryResidential}
	if err := db.AddCapture(match.ID, ev); err != nil {
		t.Fatalf("Failed to add capture: %v", err)
	}
	tx := game.Transaction{
		ID:          "tx-1",
		Kind:        game.TransactionProduction,
		TerritoryID: "den",
		Faction:     "kittens",
		Resource:    game.ResourceTuna,
		Amount:      10,
		Timestamp:   time.Now(),
	}
	if err := db.AddTransactions(match.ID, []game.Transaction{tx}); err != nil {
		t.Fatalf("Failed to add transactions: %v", err)
	}

	env := newTestEnv(t, Config{MatchID: match.ID}, db)
	if _, err := env.reg.CreateTerritory("den", game.Vector3{}, game.TerritoryResidential); err != nil {
		t.Fatalf("Failed to create territory: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/territories/den/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var history struct {
		Captures []database.CaptureRecord `json:"captures"`
	}
	decode(t, w, &history)
	if len(history.Captures) != 1 || history.Captures[0].NewOwner != "kittens" {
		t.Errorf("Expected one capture by kittens, got %+v", history.Captures)
	}

	w = env.do(t, http.MethodGet, "/api/ledger/totals", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var ledger struct {
		Totals []database.LedgerTotal `json:"totals"`
	}
	decode(t, w, &ledger)
	if len(ledger.Totals) != 1 || ledger.Totals[0].Amount != 10 {
		t.Errorf("Expected 10 tuna for kittens, got %+v", ledger.Totals)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want protocol.ErrorCode
	}{
		{errInvalidPayload, protocol.ErrCodeInvalidPayload},
		{unknownTerritory("x"), protocol.ErrCodeUnknownTerritory},
		{errNoTerritoryAt, protocol.ErrCodeUnknownTerritory},
		{fmt.Errorf("wrap: %w", game.ErrDuplicateTerritory), protocol.ErrCodeDuplicateTerritory},
		{game.ErrInvalidTerritory, protocol.ErrCodeInvalidTerritory},
		{game.ErrUnknownGenerator, protocol.ErrCodeUnknownGenerator},
		{game.ErrUnknownCollectionPoint, protocol.ErrCodeUnknownCollectionPoint},
		{game.ErrInvalidResource, protocol.ErrCodeInvalidResource},
		{io.EOF, protocol.ErrCodeInternalError},
	}
	for _, tt := range tests {
		if got := errorCode(tt.err); got != tt.want {
			t.Errorf("errorCode(%v): expected %s, got %s", tt.err, tt.want, got)
		}
	}
}

// ==================== WebSocket ====================

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, env *testEnv) *wsClient {
	t.Helper()
	ts := httptest.NewServer(env.server.Handler())
	t.Cleanup(ts.Close)

	go env.server.Hub().Run()
	t.Cleanup(env.server.Hub().Stop)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	c := &wsClient{t: t, conn: conn}
	if welcome := c.read(); welcome.Type != protocol.TypeWelcome {
		t.Fatalf("Expected welcome, got %s", welcome.Type)
	}
	return c
}

func (c *wsClient) send(id string, msgType protocol.MessageType, payload interface{}) {
	c.t.Helper()
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatalf("Failed to build message: %v", err)
	}
	msg.ID = id
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("Failed to write: %v", err)
	}
}

func (c *wsClient) read() protocol.Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.t.Fatalf("Failed to read: %v", err)
	}
	return msg
}

func TestWebSocketWelcome(t *testing.T) {
	env := newTestEnv(t, Config{MatchID: "m1", LayoutID: "meadow", TickRateHz: 5}, nil)
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()
	go env.server.Hub().Run()
	defer env.server.Hub().Stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	var msg protocol.Message
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read welcome: %v", err)
	}
	var welcome protocol.WelcomePayload
	if err := msg.ParsePayload(&welcome); err != nil {
		t.Fatalf("Failed to parse welcome: %v", err)
	}
	if welcome.MatchID != "m1" || welcome.LayoutID != "meadow" {
		t.Errorf("Expected match m1 on meadow, got %+v", welcome)
	}
	if welcome.CaptureTime != game.DefaultConfig().CaptureTime {
		t.Errorf("Expected capture time %d, got %d", game.DefaultConfig().CaptureTime, welcome.CaptureTime)
	}
}

func TestWebSocketRequests(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	c := dial(t, env)

	c.send("p1", protocol.TypePing, struct{}{})
	if msg := c.read(); msg.Type != protocol.TypePong || msg.ID != "p1" {
		t.Errorf("Expected pong p1, got %s %s", msg.Type, msg.ID)
	}

	c.send("c1", protocol.TypeCreateTerritory, protocol.CreateTerritoryPayload{
		TerritoryID: "den",
		Type:        game.TerritoryIndustrial,
	})
	if msg := c.read(); msg.Type != protocol.TypeTerritoryCreated || msg.ID != "c1" {
		t.Fatalf("Expected territory_created c1, got %s %s", msg.Type, msg.ID)
	}

	c.send("c2", protocol.TypeCreateTerritory, protocol.CreateTerritoryPayload{
		TerritoryID: "den",
		Type:        game.TerritoryIndustrial,
	})
	msg := c.read()
	var e protocol.ErrorPayload
	if err := msg.ParsePayload(&e); err != nil {
		t.Fatalf("Failed to parse error: %v", err)
	}
	if msg.Type != protocol.TypeError || e.Code != protocol.ErrCodeDuplicateTerritory {
		t.Errorf("Expected duplicate_territory error, got %s %s", msg.Type, e.Code)
	}

	units := []game.Unit{{Owner: "kittens", Role: game.RoleSupport}}
	c.send("u1", protocol.TypeUpdateTerritory, protocol.UpdateTerritoryPayload{TerritoryID: "den", Units: units})
	msg = c.read()
	var state protocol.TerritoryStatePayload
	if err := msg.ParsePayload(&state); err != nil {
		t.Fatalf("Failed to parse state: %v", err)
	}
	if state.Territory.CaptureProgress != 0 {
		t.Errorf("Expected capture progress 0 before a tick, got %d", state.Territory.CaptureProgress)
	}
	env.loop.Step()
	if den, _ := env.reg.GetTerritory("den"); den.CaptureProgress != 1 {
		t.Errorf("Expected capture progress 1 after a tick, got %d", den.CaptureProgress)
	}

	c.send("x1", "dance", struct{}{})
	msg = c.read()
	e = protocol.ErrorPayload{}
	msg.ParsePayload(&e)
	if e.Code != protocol.ErrCodeUnknownMessage {
		t.Errorf("Expected unknown_message, got %s", e.Code)
	}
}

func TestWebSocketReportUnitsUsesClientSource(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	if _, err := env.reg.CreateTerritory("den", game.Vector3{}, game.TerritoryResidential); err != nil {
		t.Fatalf("Failed to create territory: %v", err)
	}
	c := dial(t, env)

	units := []game.Unit{{Owner: "kittens", Role: game.RoleSupport}}
	c.send("r1", protocol.TypeReportUnits, protocol.ReportUnitsPayload{TerritoryID: "den", Units: units})
	// report_units has no reply; poll until the handler has run.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := env.roster.Take("den"); len(got) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected reported units to reach the roster")
}

// sync round-trips a ping so every earlier message from c has been handled.
func (c *wsClient) sync(id string) {
	c.t.Helper()
	c.send(id, protocol.TypePing, struct{}{})
	for {
		msg := c.read()
		if msg.Type == protocol.TypePong && msg.ID == id {
			return
		}
	}
}

func TestWebSocketReportsKeepClientOrder(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	if _, err := env.reg.CreateTerritory("den", game.Vector3{}, game.TerritoryResidential); err != nil {
		t.Fatalf("Failed to create territory: %v", err)
	}
	c := dial(t, env)

	for i := 0; i < 20; i++ {
		first := []game.Unit{{ID: "a1", Owner: "A"}}
		second := []game.Unit{{ID: "b1", Owner: "B"}, {ID: "b2", Owner: "B"}}
		c.send(fmt.Sprintf("r%da", i), protocol.TypeReportUnits, protocol.ReportUnitsPayload{TerritoryID: "den", Units: first})
		c.send(fmt.Sprintf("r%db", i), protocol.TypeReportUnits, protocol.ReportUnitsPayload{TerritoryID: "den", Units: second})
		c.sync(fmt.Sprintf("p%d", i))

		units := env.roster.Take("den")
		if len(units) != 2 || units[0].Owner != "B" || units[1].Owner != "B" {
			t.Fatalf("Round %d: expected the later report to win, got %+v", i, units)
		}
	}
}

func TestWebSocketUpdateTerritoryWaitsForTicks(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	if _, err := env.reg.CreateTerritory("den", game.Vector3{}, game.TerritorySupply); err != nil {
		t.Fatalf("Failed to create territory: %v", err)
	}
	c := dial(t, env)
	scout := protocol.UpdateTerritoryPayload{
		TerritoryID: "den",
		Units:       []game.Unit{{ID: "s1", Owner: "rogue", Role: game.RoleScout}},
	}

	for i := 0; i < 10; i++ {
		c.send(fmt.Sprintf("u%d", i), protocol.TypeUpdateTerritory, scout)
		if msg := c.read(); msg.Type != protocol.TypeTerritoryState {
			t.Fatalf("Expected territory_state, got %s", msg.Type)
		}
	}
	if env.loop.Tick() != 0 {
		t.Errorf("Expected tick 0, got %d", env.loop.Tick())
	}
	if den, _ := env.reg.GetTerritory("den"); den.Owner != "" || den.CaptureProgress != 0 {
		t.Fatalf("Expected den untouched without ticks, got owner %q progress %d", den.Owner, den.CaptureProgress)
	}

	captureTime := game.DefaultConfig().CaptureTime
	for i := 1; i <= captureTime; i++ {
		if i > 1 {
			c.send(fmt.Sprintf("t%d", i), protocol.TypeUpdateTerritory, scout)
			c.read()
		}
		env.loop.Step()
		den, _ := env.reg.GetTerritory("den")
		if i < captureTime && den.Owner != "" {
			t.Fatalf("Expected den unowned after %d ticks, got %q", i, den.Owner)
		}
		if i == captureTime && den.Owner != "rogue" {
			t.Errorf("Expected den captured after %d ticks, got %q", i, den.Owner)
		}
	}
}

func TestWebSocketReportUnitsBatch(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	for _, id := range []string{"den", "attic"} {
		if _, err := env.reg.CreateTerritory(id, game.Vector3{}, game.TerritoryResidential); err != nil {
			t.Fatalf("Failed to create territory: %v", err)
		}
	}
	c := dial(t, env)
	units := []game.Unit{{Owner: "kittens", Role: game.RoleSupport}}

	c.send("b1", protocol.TypeReportUnitsBatch, protocol.ReportUnitsBatchPayload{Reports: []protocol.ReportUnitsPayload{
		{TerritoryID: "den", Units: units},
		{TerritoryID: "attic", Units: units},
	}})
	c.sync("p1")
	if got := env.roster.Reported(); len(got) != 2 {
		t.Errorf("Expected both territories reported, got %v", got)
	}
	env.roster.Take("den")
	env.roster.Take("attic")

	c.send("b2", protocol.TypeReportUnitsBatch, protocol.ReportUnitsBatchPayload{Reports: []protocol.ReportUnitsPayload{
		{TerritoryID: "den", Units: units},
		{TerritoryID: "cellar", Units: units},
	}})
	msg := c.read()
	var e protocol.ErrorPayload
	if err := msg.ParsePayload(&e); err != nil {
		t.Fatalf("Failed to parse error: %v", err)
	}
	if msg.Type != protocol.TypeError || msg.ID != "b2" || e.Code != protocol.ErrCodeUnknownTerritory {
		t.Errorf("Expected unknown_territory error for b2, got %s %s %s", msg.Type, msg.ID, e.Code)
	}
	if got := env.roster.Reported(); len(got) != 0 {
		t.Errorf("Expected a rejected batch to queue nothing, got %v", got)
	}
}

func TestCaptureBroadcast(t *testing.T) {
	env := newTestEnv(t, Config{}, nil)
	c := dial(t, env)

	NewCaptureBroadcaster(env.server.Hub()).NotifyCapture(game.CaptureEvent{
		TerritoryID:   "den",
		NewOwner:      "kittens",
		TerritoryType: game.TerritorySupply,
	})

	msg := c.read()
	if msg.Type != protocol.TypeTerritoryCaptured {
		t.Fatalf("Expected territory_captured, got %s", msg.Type)
	}
	var payload map[string]string
	if err := msg.ParsePayload(&payload); err != nil {
		t.Fatalf("Failed to parse payload: %v", err)
	}
	if len(payload) != 3 || payload["new_owner"] != "kittens" || payload["territory_type"] != "supply" {
		t.Errorf("Expected exactly three capture fields, got %v", payload)
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	env := newTestEnv(t, Config{ClientRateLimit: 0.001, ClientBurst: 1}, nil)
	c := dial(t, env)

	c.send("p1", protocol.TypePing, struct{}{})
	c.send("p2", protocol.TypePing, struct{}{})

	got := map[string]protocol.MessageType{}
	for i := 0; i < 2; i++ {
		msg := c.read()
		got[msg.ID] = msg.Type
	}
	if got["p1"] != protocol.TypePong {
		t.Errorf("Expected pong for p1, got %s", got["p1"])
	}
	if got["p2"] != protocol.TypeError {
		t.Errorf("Expected rate limit error for p2, got %s", got["p2"])
	}
}
