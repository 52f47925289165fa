package tools

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/leanix"
	"github.com/robby/leanix-mcp/internal/lxerr"
)

// fakeService records calls and answers with canned data.
type fakeService struct {
	mu    sync.Mutex
	calls []string

	lastType  string
	lastPage  leanix.PageRequest
	lastTerm  string
	lastList  domain.FactSheetType
	err       error
	factSheet domain.FactSheet
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) GetFactSheetsByType(_ context.Context, typeName string) ([]domain.FactSheet, error) {
	f.record("GetFactSheetsByType")
	f.lastType = typeName
	if f.err != nil {
		return nil, f.err
	}
	return []domain.FactSheet{f.factSheet}, nil
}

func (f *fakeService) GetFactSheetsByTypePaginated(_ context.Context, typeName string, pr leanix.PageRequest) (domain.Page, error) {
	f.record("GetFactSheetsByTypePaginated")
	f.lastType = typeName
	f.lastPage = pr
	if f.err != nil {
		return domain.Page{}, f.err
	}
	cursor := "next"
	return domain.Page{
		PageInfo: domain.PageInfo{HasNextPage: true, EndCursor: &cursor},
		Edges:    []domain.FactSheetEdge{{Node: f.factSheet}},
	}, nil
}

func (f *fakeService) SearchFactSheetsByName(_ context.Context, term string) ([]domain.FactSheet, error) {
	f.record("SearchFactSheetsByName")
	f.lastTerm = term
	if f.err != nil {
		return nil, f.err
	}
	return []domain.FactSheet{f.factSheet}, nil
}

func (f *fakeService) GetWorkspaceInfo(_ context.Context) (string, error) {
	f.record("GetWorkspaceInfo")
	if f.err != nil {
		return "", f.err
	}
	return `Workspace information: {"data":{}}`, nil
}

func (f *fakeService) GetTypes(_ context.Context) ([]domain.Facet, error) {
	f.record("GetTypes")
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Facet{{FacetKey: "FactSheetTypes", Results: []domain.FacetResult{{Name: "Application", Key: "Application"}}}}, nil
}

func (f *fakeService) ListByType(_ context.Context, t domain.FactSheetType) ([]domain.FactSheet, error) {
	f.record("ListByType")
	f.lastList = t
	if f.err != nil {
		return nil, f.err
	}
	return []domain.FactSheet{f.factSheet}, nil
}

// connect registers the tools on a server and returns a connected client session.
func connect(t *testing.T, svc Service) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "leanix-mcp", Version: "test"}, nil)
	Register(server, svc, zaptest.NewLogger(t))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		cs.Close()
		ss.Close()
	})
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	params := &mcp.CallToolParams{Name: name}
	if args != nil {
		params.Arguments = args
	}
	res, err := cs.CallTool(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text, res.IsError
}

func TestDefinitions(t *testing.T) {
	var names []string
	for _, d := range Definitions() {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
	}

	assert.Equal(t, []string{
		"getFactSheetsByType",
		"getFactSheetsByTypePaginated",
		"searchFactSheetsByName",
		"getWorkspaceInfo",
		"getTypes",
		"getApplications",
		"getITComponents",
		"getBusinessCapabilities",
		"getProviders",
		"getOrganizations",
		"getBusinessContexts",
		"getInterfaces",
		"getDataObjects",
	}, names)
}

func TestRegister_ListTools(t *testing.T) {
	cs := connect(t, &fakeService{})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	got := make(map[string]bool)
	for _, tool := range res.Tools {
		got[tool.Name] = true
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	for _, d := range Definitions() {
		assert.True(t, got[d.Name], "tool %s not registered", d.Name)
	}
	assert.Len(t, res.Tools, len(Definitions()))
}

func TestCallTool_GetFactSheetsByType(t *testing.T) {
	svc := &fakeService{factSheet: domain.FactSheet{ID: "1", Name: "CRM", Type: "Application"}}
	cs := connect(t, svc)

	text, isErr := callText(t, cs, GetFactSheetsByType, map[string]any{"type": "Application"})
	assert.False(t, isErr)
	assert.JSONEq(t, `[{"id":"1","name":"CRM","type":"Application"}]`, text)
	assert.Equal(t, "Application", svc.lastType)
}

func TestCallTool_GetFactSheetsByTypePaginated(t *testing.T) {
	svc := &fakeService{factSheet: domain.FactSheet{ID: "1"}}
	cs := connect(t, svc)

	text, isErr := callText(t, cs, GetFactSheetsByTypePaginated, map[string]any{"type": "Interface", "first": 10, "after": "abc"})
	assert.False(t, isErr)
	assert.Equal(t, "Interface", svc.lastType)
	assert.Equal(t, leanix.PageRequest{First: 10, After: "abc"}, svc.lastPage)

	var page domain.Page
	require.NoError(t, json.Unmarshal([]byte(text), &page))
	assert.True(t, page.PageInfo.HasNextPage)
	require.NotNil(t, page.PageInfo.EndCursor)
	assert.Equal(t, "next", *page.PageInfo.EndCursor)
	require.Len(t, page.Edges, 1)
}

func TestCallTool_PaginatedOptionalArgs(t *testing.T) {
	svc := &fakeService{}
	cs := connect(t, svc)

	_, isErr := callText(t, cs, GetFactSheetsByTypePaginated, map[string]any{"type": "Interface"})
	assert.False(t, isErr)
	assert.Equal(t, leanix.PageRequest{}, svc.lastPage)
}

func TestCallTool_Search(t *testing.T) {
	svc := &fakeService{factSheet: domain.FactSheet{ID: "s"}}
	cs := connect(t, svc)

	_, isErr := callText(t, cs, SearchFactSheetsByName, map[string]any{"searchTerm": "crm"})
	assert.False(t, isErr)
	assert.Equal(t, "crm", svc.lastTerm)
}

func TestCallTool_WorkspaceInfo(t *testing.T) {
	cs := connect(t, &fakeService{})

	text, isErr := callText(t, cs, GetWorkspaceInfo, nil)
	assert.False(t, isErr)
	assert.Equal(t, `Workspace information: {"data":{}}`, text)
}

func TestCallTool_GetTypes(t *testing.T) {
	cs := connect(t, &fakeService{})

	text, isErr := callText(t, cs, GetTypes, nil)
	assert.False(t, isErr)
	assert.JSONEq(t, `[{"facetKey":"FactSheetTypes","results":[{"name":"Application","key":"Application"}]}]`, text)
}

func TestCallTool_ConvenienceTools(t *testing.T) {
	for _, typ := range domain.AllFactSheetTypes() {
		t.Run(TypeToolName(typ), func(t *testing.T) {
			svc := &fakeService{factSheet: domain.FactSheet{ID: "x"}}
			cs := connect(t, svc)

			_, isErr := callText(t, cs, TypeToolName(typ), nil)
			assert.False(t, isErr)
			assert.Equal(t, []string{"ListByType"}, svc.calls)
			assert.Equal(t, typ, svc.lastList)
		})
	}
}

func TestCallTool_ErrorBecomesToolError(t *testing.T) {
	svc := &fakeService{err: lxerr.Validation("leanix.SearchFactSheetsByName", "searchTerm parameter is required")}
	cs := connect(t, svc)

	text, isErr := callText(t, cs, SearchFactSheetsByName, map[string]any{"searchTerm": " "})
	assert.True(t, isErr)
	assert.Contains(t, text, "searchTerm parameter is required")
}

func TestCallTool_MissingRequiredArgument(t *testing.T) {
	svc := &fakeService{}
	cs := connect(t, svc)

	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: GetFactSheetsByType, Arguments: map[string]any{}})
	assert.Error(t, err)
	assert.Empty(t, svc.calls)
}
