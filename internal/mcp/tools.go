package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes the handler's operations as MCP tools.
func registerTools(server *sdkmcp.Server, h *Handler) {
	// Activity records
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_activity",
		Description: "Log a new activity for a child. The payload variant must match the category.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateActivityParams) (*sdkmcp.CallToolResult, any, error) {
		rec, err := h.CreateActivity(ctx, getAuthor(ctx), in)
		if err != nil {
			return nil, nil, err
		}
		return nil, rec, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_activity",
		Description: "Edit an existing activity. Omitted fields are unchanged; the prior version is kept in history.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateActivityParams) (*sdkmcp.CallToolResult, any, error) {
		rec, err := h.UpdateActivity(ctx, getAuthor(ctx), in)
		if err != nil {
			return nil, nil, err
		}
		return nil, rec, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_activity",
		Description: "Remove an activity. Its final version is kept in history.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteActivityParams) (*sdkmcp.CallToolResult, any, error) {
		resp, err := h.DeleteActivity(ctx, getAuthor(ctx), in)
		if err != nil {
			return nil, nil, err
		}
		return nil, resp, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_activity",
		Description: "Get the current version of an activity",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetActivityParams) (*sdkmcp.CallToolResult, any, error) {
		rec, err := h.GetActivity(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return nil, rec, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_activity_history",
		Description: "List prior versions of an activity, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ActivityHistoryParams) (*sdkmcp.CallToolResult, any, error) {
		resp, err := h.ActivityHistory(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return nil, resp, nil
	})

	// Views
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_daily_timeline",
		Description: "Get every activity for a child's local day in chronological order",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DailyTimelineParams) (*sdkmcp.CallToolResult, any, error) {
		resp, err := h.DailyTimeline(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return nil, resp, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_audit_entries",
		Description: "List creates, edits and deletions across children, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListAuditEntriesParams) (*sdkmcp.CallToolResult, any, error) {
		resp, err := h.ListAuditEntries(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return nil, resp, nil
	})

	// Children
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_child",
		Description: "Add a child to the directory",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateChildParams) (*sdkmcp.CallToolResult, any, error) {
		c, err := h.CreateChild(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return nil, c, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_children",
		Description: "List children in the directory",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListChildrenParams) (*sdkmcp.CallToolResult, any, error) {
		resp, err := h.ListChildren(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, resp, nil
	})
}
