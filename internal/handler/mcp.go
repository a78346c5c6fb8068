// MCP transport handler for the storefront gateway using the official
// MCP Go SDK. Exposes pricing and collection operations as MCP tools.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront-gateway/internal/model"
	"storefront-gateway/internal/pricing"
)

// === MCP Tool Input/Output Types ===

// PriceQuoteInput is the input schema for the get_price_quote tool.
type PriceQuoteInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID,required"`
	AsOf      string `json:"as_of,omitempty" jsonschema:"RFC 3339 instant to resolve at, defaults to now"`
}

// ListCollectionInput is the input schema for the list_collection tool.
type ListCollectionInput struct {
	Collection string `json:"collection" jsonschema:"collection key,required"`
}

// CollectionItemInput is the input schema for the membership mutation tools.
type CollectionItemInput struct {
	Collection string `json:"collection" jsonschema:"collection key,required"`
	ItemID     string `json:"item_id" jsonschema:"item ID,required"`
}

// MembershipResult reports the post-mutation membership state.
type MembershipResult struct {
	Collection string `json:"collection"`
	ItemID     string `json:"item_id"`
	Member     bool   `json:"member"`
}

// NewMCPServer creates an MCP server with storefront tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront-gateway",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront gateway - product pricing and shopper collections. " +
				"Use these tools to quote prices and manage collection membership.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_price_quote",
		Description: "Resolve the current price of a product, including the best applicable discount.",
	}, h.mcpGetPriceQuote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_collection",
		Description: "List the item IDs in a shopper collection such as the wishlist.",
	}, h.mcpListCollection)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_collection_item",
		Description: "Add an item to a shopper collection. Adding an existing member is a no-op.",
	}, h.mcpAddCollectionItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_collection_item",
		Description: "Remove an item from a shopper collection.",
	}, h.mcpRemoveCollectionItem)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpGetPriceQuote(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input PriceQuoteInput,
) (*mcp.CallToolResult, *model.PriceQuote, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}

	asOf := time.Now()
	if input.AsOf != "" {
		parsed, err := time.Parse(time.RFC3339, input.AsOf)
		if err != nil {
			return nil, nil, fmt.Errorf("as_of must be an RFC 3339 timestamp")
		}
		asOf = parsed
	}

	product, err := h.adapter.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	rules, err := h.adapter.ListRules(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, pricing.Quote(product, rules, asOf), nil
}

func (h *Handler) mcpListCollection(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListCollectionInput,
) (*mcp.CallToolResult, *model.Collection, error) {
	if input.Collection == "" {
		return nil, nil, fmt.Errorf("collection is required")
	}

	members, err := h.adapter.ListMembers(ctx, input.Collection)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &model.Collection{Key: input.Collection, ItemIDs: members}, nil
}

func (h *Handler) mcpAddCollectionItem(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CollectionItemInput,
) (*mcp.CallToolResult, *MembershipResult, error) {
	if input.Collection == "" || input.ItemID == "" {
		return nil, nil, fmt.Errorf("collection and item_id are required")
	}

	if err := h.adapter.AddMember(ctx, input.Collection, input.ItemID); err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &MembershipResult{Collection: input.Collection, ItemID: input.ItemID, Member: true}, nil
}

func (h *Handler) mcpRemoveCollectionItem(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CollectionItemInput,
) (*mcp.CallToolResult, *MembershipResult, error) {
	if input.Collection == "" || input.ItemID == "" {
		return nil, nil, fmt.Errorf("collection and item_id are required")
	}

	if err := h.adapter.RemoveMember(ctx, input.Collection, input.ItemID); err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &MembershipResult{Collection: input.Collection, ItemID: input.ItemID, Member: false}, nil
}

// mcpError converts adapter errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	if apiErr, ok := err.(*model.APIError); ok {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
