package service

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/engine/app"
)

func newLocalServer(t *testing.T) *Server {
	t.Helper()
	svc, store, err := app.OpenService(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	server, err := NewWithEngine(svc)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

func connectInMemory(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("connect server: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	return result
}

func decodeStructured(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool failed: %s", toolText(result))
	}
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
}

func toolText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestNewWithEngineRequiresEngine(t *testing.T) {
	if _, err := NewWithEngine(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestServerRegistersToolsAndResources(t *testing.T) {
	session := connectInMemory(t, newLocalServer(t))
	ctx := context.Background()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"ability_apply", "catalog_list", "character_compute", "character_create", "character_delete",
		"character_get", "character_list", "property_add", "property_remove", "property_set_enabled",
		"roll_log_list", "test_opposed", "test_perform", "test_probability",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tools = %v, want %v", names, want)
	}

	templates, err := session.ListResourceTemplates(ctx, nil)
	if err != nil {
		t.Fatalf("list resource templates: %v", err)
	}
	if len(templates.ResourceTemplates) != 2 {
		t.Errorf("resource templates = %d, want 2", len(templates.ResourceTemplates))
	}
}

func TestToolsAgainstLocalEngine(t *testing.T) {
	session := connectInMemory(t, newLocalServer(t))

	var created struct {
		Character struct {
			ID       string   `json:"id"`
			Keywords []string `json:"keywords"`
		} `json:"character"`
	}
	decodeStructured(t, callTool(t, session, "character_create", map[string]any{
		"name":            "Sister Amalia",
		"tier":            1,
		"rank":            2,
		"species_id":      "human",
		"archetype_id":    "sister-hospitaller",
		"keyword_choices": map[string]any{"[ORDER]": "Our Martyred Lady"},
		"attributes":      map[string]any{"intellect": 4},
		"skills":          map[string]any{"medicae": 3},
	}), &created)
	characterID := created.Character.ID
	if characterID == "" {
		t.Fatal("expected character id")
	}

	roll := func() map[string]any {
		var out map[string]any
		decodeStructured(t, callTool(t, session, "test_perform", map[string]any{
			"character_id": characterID,
			"skill":        "medicae",
			"difficulty":   3,
			"seed":         42,
		}), &out)
		return out
	}
	first, second := roll(), roll()
	firstResult, _ := json.Marshal(first["result"])
	secondResult, _ := json.Marshal(second["result"])
	if string(firstResult) != string(secondResult) {
		t.Errorf("same seed rolled differently: %s vs %s", firstResult, secondResult)
	}
	if first["seed_used"] != float64(42) || first["seed_source"] != "CLIENT" {
		t.Errorf("seed = %v %v", first["seed_used"], first["seed_source"])
	}

	var rolls struct {
		Rolls []struct {
			Seed int64  `json:"seed"`
			Kind string `json:"kind"`
		} `json:"rolls"`
	}
	decodeStructured(t, callTool(t, session, "roll_log_list", map[string]any{"character_id": characterID}), &rolls)
	if len(rolls.Rolls) != 2 || rolls.Rolls[0].Seed != 42 {
		t.Errorf("rolls = %+v", rolls.Rolls)
	}

	var sheet struct {
		Sheet map[string]any `json:"sheet"`
	}
	decodeStructured(t, callTool(t, session, "character_get", map[string]any{"character_id": characterID}), &sheet)
	if _, ok := sheet.Sheet["graph"].(map[string]any); !ok {
		t.Errorf("sheet graph = %T", sheet.Sheet["graph"])
	}

	var computed struct {
		Stats map[string]any `json:"stats"`
	}
	decodeStructured(t, callTool(t, session, "character_compute", map[string]any{"character_id": characterID}), &computed)
	skills, _ := computed.Stats["skills"].(map[string]any)
	if skills["medicae"] == nil {
		t.Errorf("stats = %v", computed.Stats)
	}

	failed := callTool(t, session, "catalog_list", map[string]any{"kind": "talents"})
	if !failed.IsError {
		t.Fatal("expected tool error for unknown catalog")
	}
	if text := toolText(failed); !strings.Contains(text, "Unknown catalog talents.") {
		t.Errorf("error text = %q", text)
	}
}

func TestRunRejectsUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "carrier-pigeon", Engine: EngineLocal})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}

func TestNewRejectsBadEngineConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{Engine: "psychic"}); err == nil {
		t.Error("expected error for unknown engine mode")
	}
	if _, err := New(ctx, Config{Engine: EngineRemote, EngineAddr: " "}); err == nil {
		t.Error("expected error for missing engine address")
	}
}

func TestServeWithTransportStopsOnCancel(t *testing.T) {
	server, err := New(context.Background(), Config{Engine: EngineLocal, DBPath: filepath.Join(t.TempDir(), "engine.db")})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer session.Close()

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	if server.closeFn != nil {
		t.Error("expected engine to be released")
	}
}

func TestServeHTTP(t *testing.T) {
	server := newLocalServer(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveHTTPListener(ctx, listener)
	}()
	baseURL := "http://" + listener.Addr().String()

	resp, err := http.Get(baseURL + mcpHealthPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("health = %d %s", resp.StatusCode, body)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, &mcp.StreamableClientTransport{Endpoint: baseURL + mcpPath}, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	var odds struct {
		Success float64 `json:"success"`
	}
	result, err := session.CallTool(clientCtx, &mcp.CallToolParams{
		Name:      "test_probability",
		Arguments: map[string]any{"dice_pool": 3, "difficulty": 0},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	decodeStructured(t, result, &odds)
	if odds.Success < 0.999999 {
		t.Errorf("P(dn 0) = %v", odds.Success)
	}
	_ = session.Close()

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("HTTP server did not stop")
	}
}

func TestNewWithRemoteEngine(t *testing.T) {
	engine, err := app.New(app.Config{Addr: "127.0.0.1:0", DBPath: filepath.Join(t.TempDir(), "engine.db")})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engineDone := make(chan error, 1)
	go func() { engineDone <- engine.Serve(ctx) }()

	server, err := New(ctx, Config{Engine: EngineRemote, EngineAddr: engine.Addr()})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if server.conn == nil {
		t.Fatal("expected a gRPC connection")
	}
	session := connectInMemory(t, server)

	result := callTool(t, session, "test_probability", map[string]any{"dice_pool": 2, "difficulty": 0, "locale": "pt-BR"})
	var out struct {
		Success        float64 `json:"success"`
		DifficultyName string  `json:"difficulty_name"`
	}
	decodeStructured(t, result, &out)
	if out.Success < 0.999999 {
		t.Errorf("P(dn 0) = %v", out.Success)
	}
	if out.DifficultyName == "" {
		t.Error("expected a localized difficulty name")
	}

	if err := server.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	cancel()
	select {
	case <-engineDone:
	case <-time.After(10 * time.Second):
		t.Fatal("engine did not stop")
	}
}
