package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/mcp"
	"github.com/rpggio/carelog/internal/sqlite"
	"github.com/rpggio/carelog/internal/timeline"
	"github.com/rpggio/carelog/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer runs the HTTP surface (/rpc, /mcp and the live timeline) over an
// in-memory store.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Store    *sqlite.ActivityStore
	Token    string
	Author   activity.Author
	Location *time.Location

	nextID atomic.Int64
}

// New starts a server whose only API key is token, issued to author.
// Bucket dates are computed in loc.
func New(t *testing.T, token string, author activity.Author, loc *time.Location) *TestServer {
	t.Helper()
	if loc == nil {
		loc = time.UTC
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	store := sqlite.NewActivityStore(db, nil)
	childRepo := sqlite.NewChildRepository(db)
	keys := sqlite.NewAPIKeyRepository(db)

	timelineSvc := timeline.NewService(store, store, nil)
	services := mcp.Services{
		Activities: activity.NewService(store, loc, nil),
		Timeline:   timelineSvc,
		Audit:      audit.NewService(childRepo, store, audit.Config{}, nil),
		Children:   child.NewService(childRepo, nil),
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      keys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(transport.Options{
		RPC:      mcp.NewHandler(services),
		Timeline: timelineSvc,
		MCP:      mcpHandler,
		Auth:     transport.AuthMiddleware(keys),
	}))

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Store:    store,
		Token:    token,
		Author:   author,
		Location: loc,
	}

	require.NoError(t, keys.Create(t.Context(), token, author, "test"))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Call invokes a JSON-RPC method as the server's author and decodes the
// result into out. A JSON-RPC error is returned instead of failing the test.
func (ts *TestServer) Call(t *testing.T, method string, params, out any) *transport.Error {
	t.Helper()

	raw, err := json.Marshal(params)
	require.NoError(t, err)
	body, err := json.Marshal(transport.Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  raw,
		ID:      ts.nextID.Add(1),
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Result json.RawMessage  `json:"result"`
		Error  *transport.Error `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Result, out))
	}
	return nil
}

// LiveURL returns the websocket URL of a child's live day view.
func (ts *TestServer) LiveURL(childID, date string) string {
	return "ws" + strings.TrimPrefix(ts.Server.URL, "http") +
		"/children/" + childID + "/timeline/" + date + "/live?access_token=" + ts.Token
}
