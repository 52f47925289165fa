// Package tools exposes the LeanIX catalog operations as Model Context Protocol tools.
// Each tool has a typed input whose JSON schema the SDK infers, and answers
// with the JSON encoding of the operation's result as text content.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/leanix"
)

// Service is the catalog surface the tools call. *leanix.Client implements it.
type Service interface {
	GetFactSheetsByType(ctx context.Context, typeName string) ([]domain.FactSheet, error)
	GetFactSheetsByTypePaginated(ctx context.Context, typeName string, pr leanix.PageRequest) (domain.Page, error)
	SearchFactSheetsByName(ctx context.Context, term string) ([]domain.FactSheet, error)
	GetWorkspaceInfo(ctx context.Context) (string, error)
	GetTypes(ctx context.Context) ([]domain.Facet, error)
	ListByType(ctx context.Context, t domain.FactSheetType) ([]domain.FactSheet, error)
}

var _ Service = (*leanix.Client)(nil)

// Definition describes one tool.
type Definition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Tool names of the generic operations.
const (
	GetFactSheetsByType          = "getFactSheetsByType"
	GetFactSheetsByTypePaginated = "getFactSheetsByTypePaginated"
	SearchFactSheetsByName       = "searchFactSheetsByName"
	GetWorkspaceInfo             = "getWorkspaceInfo"
	GetTypes                     = "getTypes"
)

// TypeToolName returns the name of the convenience tool for t,
// e.g. "getITComponents" for ITComponent.
func TypeToolName(t domain.FactSheetType) string {
	return "get" + strings.ReplaceAll(t.Label(), " ", "")
}

// Definitions lists every tool in registration order.
func Definitions() []Definition {
	defs := []Definition{
		{GetFactSheetsByType, "Get all factsheets of a given type (string), returns List<FactSheet>"},
		{GetFactSheetsByTypePaginated, "Get one page of factsheets of a given type (string). Optional first (int) sets the page size, after (string) is the endCursor of the previous page. Returns edges and pageInfo"},
		{SearchFactSheetsByName, "Search for factsheets by name (string), returns List<FactSheet>"},
		{GetWorkspaceInfo, "Get information regarding the workspace"},
		{GetTypes, "Get the factsheet types and other facets available in the workspace"},
	}
	for _, t := range domain.AllFactSheetTypes() {
		defs = append(defs, Definition{
			Name:        TypeToolName(t),
			Description: fmt.Sprintf("Get the first page of %s (factsheet type %s), returns List<FactSheet>", t.Label(), t),
		})
	}
	return defs
}

// TypeInput is the input of getFactSheetsByType.
type TypeInput struct {
	Type string `json:"type" jsonschema:"the factsheet type, e.g. Application or DataObject"`
}

// PageInput is the input of getFactSheetsByTypePaginated.
type PageInput struct {
	Type  string `json:"type" jsonschema:"the factsheet type, e.g. Application or DataObject"`
	First int    `json:"first,omitempty" jsonschema:"page size, defaults to the configured page size"`
	After string `json:"after,omitempty" jsonschema:"endCursor of the previous page, omit for the first page"`
}

// SearchInput is the input of searchFactSheetsByName.
type SearchInput struct {
	SearchTerm string `json:"searchTerm" jsonschema:"text to search for in factsheet names"`
}

// NoInput is the input of tools without parameters.
type NoInput struct{}

// Register adds every tool to server.
func Register(server *mcp.Server, svc Service, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{svc: svc, logger: logger}
	desc := make(map[string]string)
	for _, d := range Definitions() {
		desc[d.Name] = d.Description
	}

	mcp.AddTool(server, &mcp.Tool{Name: GetFactSheetsByType, Description: desc[GetFactSheetsByType]}, h.byType)
	mcp.AddTool(server, &mcp.Tool{Name: GetFactSheetsByTypePaginated, Description: desc[GetFactSheetsByTypePaginated]}, h.byTypePaginated)
	mcp.AddTool(server, &mcp.Tool{Name: SearchFactSheetsByName, Description: desc[SearchFactSheetsByName]}, h.search)
	mcp.AddTool(server, &mcp.Tool{Name: GetWorkspaceInfo, Description: desc[GetWorkspaceInfo]}, h.workspaceInfo)
	mcp.AddTool(server, &mcp.Tool{Name: GetTypes, Description: desc[GetTypes]}, h.types)

	for _, t := range domain.AllFactSheetTypes() {
		name := TypeToolName(t)
		mcp.AddTool(server, &mcp.Tool{Name: name, Description: desc[name]}, h.listType(t))
	}
}

type handlers struct {
	svc    Service
	logger *zap.Logger
}

func (h *handlers) byType(ctx context.Context, _ *mcp.CallToolRequest, in TypeInput) (*mcp.CallToolResult, any, error) {
	factSheets, err := h.svc.GetFactSheetsByType(ctx, in.Type)
	return h.result(GetFactSheetsByType, factSheets, err)
}

func (h *handlers) byTypePaginated(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, any, error) {
	page, err := h.svc.GetFactSheetsByTypePaginated(ctx, in.Type, leanix.PageRequest{First: in.First, After: in.After})
	return h.result(GetFactSheetsByTypePaginated, page, err)
}

func (h *handlers) search(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, any, error) {
	factSheets, err := h.svc.SearchFactSheetsByName(ctx, in.SearchTerm)
	return h.result(SearchFactSheetsByName, factSheets, err)
}

func (h *handlers) workspaceInfo(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	info, err := h.svc.GetWorkspaceInfo(ctx)
	if err != nil {
		h.logger.Error("tool failed", zap.String("tool", GetWorkspaceInfo), zap.Error(err))
		return nil, nil, err
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: info}}}, nil, nil
}

func (h *handlers) types(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	facets, err := h.svc.GetTypes(ctx)
	return h.result(GetTypes, facets, err)
}

func (h *handlers) listType(t domain.FactSheetType) mcp.ToolHandlerFor[NoInput, any] {
	name := TypeToolName(t)
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		factSheets, err := h.svc.ListByType(ctx, t)
		return h.result(name, factSheets, err)
	}
}

// result encodes v as JSON text content. A failed operation becomes a tool
// error so the agent sees its message.
func (h *handlers) result(tool string, v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		h.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
		return nil, nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s result: %w", tool, err)
	}

	h.logger.Debug("tool succeeded", zap.String("tool", tool), zap.Int("bytes", len(data)))
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}, nil, nil
}
