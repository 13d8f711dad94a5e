package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `carelog keeps a childcare center's daily activity log.

Core concepts:
- Child: an enrolled child. Activities reference children by id (list_children).
- Activity: one observation in a fixed category (Bathroom, Sleep, Activities, Food, Needs) with a typed payload.
- Day: activities are grouped by the center's local calendar date of occurred_at.
- History: every edit and deletion keeps the prior version; list_audit_entries shows who changed what.

Workflow:
1) Find the child with list_children.
2) Read the day with get_daily_timeline (date defaults to today).
3) Write with create_activity / update_activity / delete_activity.
4) Review changes with list_audit_entries or get_activity_history.

See carelog://docs/payloads for the payload shape of each category.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "carelog://docs/payloads",
		Name:        "payloads",
		Title:       "Activity payloads",
		Description: "Payload variant and allowed values for each category",
		Content: `# Activity payloads

Send exactly one variant, keyed by the lowercase category name.

## Bathroom
` + "`{\"bathroom\": {\"urinated\": true, \"bm\": false, \"no_void\": false}}`" + `
- no_void may not be combined with urinated or bm.

## Sleep
` + "`{\"sleep\": {\"nap\": \"full\"}}`" + `
- nap is one of full, partial, none.

## Food
` + "`{\"food\": {\"item\": \"Lunch\", \"amount\": \"Some\"}}`" + `
- item is required; amount is one of All, Some, None.

## Activities
` + "`{\"activities\": {\"kind\": \"Outdoor Play\", \"detail\": \"\"}}`" + `
- kind is one of Toys, Games, Outdoor Play, Art/Crafts, Music/Singing, Books, Other Activity.
- detail is optional free text.

## Needs
` + "`{\"needs\": {\"items\": [\"Diapers\", \"Other\"], \"other_detail\": \"sunscreen\"}}`" + `
- items are Diapers, Wipes, Extra Clothes, Snacks, Other; at least one, no repeats.
- other_detail is only allowed alongside Other.

Times: occurred_at accepts RFC3339 or local "YYYY-MM-DD HH:MM" in the center's time zone.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
