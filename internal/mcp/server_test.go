package mcp

import (
	"context"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, server *sdkmcp.Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, NewServer(Config{TransportMode: "stdio"}))

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		"create_activity", "update_activity", "delete_activity",
		"get_daily_timeline", "list_audit_entries", "get_activity_history",
	} {
		require.True(t, names[name], "missing tool %s", name)
	}
}

func TestServer_InjectsDefaultAuthor(t *testing.T) {
	author := activity.Author{ID: "local", Label: "Staff"}
	var got activity.CreateRequest
	server := NewServer(Config{
		TransportMode: "stdio",
		DefaultAuthor: author,
		Services: Services{Activities: activityStub{
			createFn: func(_ context.Context, req activity.CreateRequest) (*activity.Record, error) {
				got = req
				return &activity.Record{ID: "a1", ChildID: req.ChildID, Category: req.Category, OccurredAt: req.OccurredAt}, nil
			},
		}},
	})
	session := connect(t, server)

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name: "create_activity",
		Arguments: map[string]any{
			"child_id":    "c1",
			"category":    "Sleep",
			"occurred_at": "2024-01-15T13:00:00Z",
			"payload":     map[string]any{"sleep": map[string]any{"nap": "full"}},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "create_activity returned error: %v", result.Content)
	require.Equal(t, author, got.Author)
	require.Equal(t, activity.CategorySleep, got.Category)
	require.True(t, got.OccurredAt.Equal(time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)))
}

func TestServer_ToolErrorsAreResults(t *testing.T) {
	server := NewServer(Config{
		TransportMode: "stdio",
		Services: Services{Activities: activityStub{
			deleteFn: func(_ context.Context, _ activity.DeleteRequest) error {
				return activity.ErrNotFound
			},
		}},
	})
	session := connect(t, server)

	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "delete_activity",
		Arguments: map[string]any{"id": "missing"},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	require.Contains(t, text.Text, "NOT_FOUND")
}

func TestServer_ReadsPayloadDocs(t *testing.T) {
	session := connect(t, NewServer(Config{TransportMode: "stdio"}))

	res, err := session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "carelog://docs/payloads"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "no_void")
}
