package leanix

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/lxerr"
)

// PageRequest selects one page of a paginated query.
type PageRequest struct {
	// First is the page size. 0 uses the client's default page size.
	First int
	// After is the endCursor of the previous page. Empty requests the first page.
	After string
}

// GetFactSheetsByType returns every fact sheet of the given type with the
// basic field set. typeName is any FactSheetType literal known to the workspace.
func (c *Client) GetFactSheetsByType(ctx context.Context, typeName string) ([]domain.FactSheet, error) {
	doc, err := c.FactSheetsByTypeDocument(ctx, typeName)
	if err != nil {
		return nil, err
	}

	factSheets, err := mapFactSheetEdges(doc, "leanix.GetFactSheetsByType")
	if err != nil {
		c.logger.Error("failed to map fact sheets", zap.String("type", typeName), zap.Error(err))
		return nil, err
	}

	c.logger.Info("fetched fact sheets", zap.String("type", typeName), zap.Int("count", len(factSheets)))
	return factSheets, nil
}

// FactSheetsByTypeDocument runs the by-type query and returns the raw response document.
func (c *Client) FactSheetsByTypeDocument(ctx context.Context, typeName string) (gjson.Result, error) {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return gjson.Result{}, lxerr.Validation("leanix.GetFactSheetsByType", "type parameter is required")
	}

	c.logger.Info("fetching fact sheets", zap.String("type", typeName))
	return c.Query(ctx, byTypeQuery.text, bindByType(typeName))
}

// GetFactSheetsByTypePaginated returns one page of fact sheets of the given type.
// Pass the returned PageInfo.EndCursor as PageRequest.After to get the next page.
func (c *Client) GetFactSheetsByTypePaginated(ctx context.Context, typeName string, pr PageRequest) (domain.Page, error) {
	const op = "leanix.GetFactSheetsByTypePaginated"

	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return domain.Page{}, lxerr.Validation(op, "type parameter is required")
	}
	if pr.First < 0 {
		return domain.Page{}, lxerr.Validation(op, "first must not be negative, got %d", pr.First)
	}

	first := pr.First
	if first == 0 {
		first = c.pageSize
	}
	after := strings.TrimSpace(pr.After)

	c.logger.Info("fetching fact sheet page",
		zap.String("type", typeName),
		zap.Int("first", first),
		zap.Bool("cursor", after != ""),
	)

	doc, err := c.Query(ctx, byTypePaginatedQuery.text, bindByTypePaginated(typeName, first, after))
	if err != nil {
		return domain.Page{}, err
	}

	page, err := mapPage(doc, op)
	if err != nil {
		c.logger.Error("failed to map fact sheet page", zap.String("type", typeName), zap.Error(err))
		return domain.Page{}, err
	}
	return page, nil
}

// FetchAllDefaultPage returns the first page of fact sheets of the given type,
// using the default page size. It does not follow hasNextPage.
func (c *Client) FetchAllDefaultPage(ctx context.Context, typeName string) ([]domain.FactSheet, error) {
	page, err := c.GetFactSheetsByTypePaginated(ctx, typeName, PageRequest{})
	if err != nil {
		return nil, err
	}
	return page.FactSheets(), nil
}

// ListByType returns the first page of one of the supported fact sheet types.
func (c *Client) ListByType(ctx context.Context, t domain.FactSheetType) ([]domain.FactSheet, error) {
	if !t.Valid() {
		return nil, lxerr.Validation("leanix.ListByType", "unsupported fact sheet type %q", string(t))
	}
	return c.FetchAllDefaultPage(ctx, string(t))
}

// SearchFactSheetsByName runs a full-text search over fact sheet names.
func (c *Client) SearchFactSheetsByName(ctx context.Context, term string) ([]domain.FactSheet, error) {
	doc, err := c.SearchDocument(ctx, term)
	if err != nil {
		return nil, err
	}

	factSheets, err := mapFactSheetEdges(doc, "leanix.SearchFactSheetsByName")
	if err != nil {
		c.logger.Error("failed to map search results", zap.Error(err))
		return nil, err
	}

	c.logger.Info("search finished", zap.Int("count", len(factSheets)))
	return factSheets, nil
}

// SearchDocument runs the name search and returns the raw response document.
func (c *Client) SearchDocument(ctx context.Context, term string) (gjson.Result, error) {
	if strings.TrimSpace(term) == "" {
		return gjson.Result{}, lxerr.Validation("leanix.SearchFactSheetsByName", "searchTerm parameter is required")
	}

	c.logger.Debug("searching fact sheets", zap.Int("termLength", len(term)))
	return c.Query(ctx, searchByNameQuery.text, bindSearch(term))
}

// GetWorkspaceInfo returns the fact sheet total and the facet counts of the
// workspace as "Workspace information: " followed by the raw JSON response.
func (c *Client) GetWorkspaceInfo(ctx context.Context) (string, error) {
	c.logger.Info("fetching workspace information")

	doc, err := c.Query(ctx, workspaceInfoQuery.text, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch workspace information: %w", err)
	}
	return "Workspace information: " + doc.Raw, nil
}

// GetTypes returns the facets of the workspace, including the FactSheetTypes
// facet that lists every type available.
func (c *Client) GetTypes(ctx context.Context) ([]domain.Facet, error) {
	c.logger.Info("fetching fact sheet types")

	doc, err := c.Query(ctx, typesQuery.text, nil)
	if err != nil {
		return nil, err
	}

	facets, err := mapFacets(doc, "leanix.GetTypes")
	if err != nil {
		c.logger.Error("failed to map fact sheet types", zap.Error(err))
		return nil, err
	}

	c.logger.Info("fetched fact sheet types", zap.Int("count", len(facets)))
	return facets, nil
}

// GetApplications returns the first page of Application fact sheets.
func (c *Client) GetApplications(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.Application)
}

// GetITComponents returns the first page of ITComponent fact sheets.
func (c *Client) GetITComponents(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.ITComponent)
}

// GetBusinessCapabilities returns the first page of BusinessCapability fact sheets.
func (c *Client) GetBusinessCapabilities(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.BusinessCapability)
}

// GetProviders returns the first page of Provider fact sheets.
func (c *Client) GetProviders(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.Provider)
}

// GetOrganizations returns the first page of UserGroup fact sheets.
func (c *Client) GetOrganizations(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.Organization)
}

// GetBusinessContexts returns the first page of Process fact sheets.
func (c *Client) GetBusinessContexts(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.BusinessContext)
}

// GetInterfaces returns the first page of Interface fact sheets.
func (c *Client) GetInterfaces(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.Interface)
}

// GetDataObjects returns the first page of DataObject fact sheets.
func (c *Client) GetDataObjects(ctx context.Context) ([]domain.FactSheet, error) {
	return c.ListByType(ctx, domain.DataObject)
}

// FactSheetURL returns the web UI link of fs in workspace, or "" when the
// workspace, type or ID is unknown.
func (c *Client) FactSheetURL(workspace string, fs domain.FactSheet) string {
	workspace = strings.Trim(strings.TrimSpace(workspace), "/")
	if workspace == "" || fs.Type == "" || fs.ID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/factsheet/%s/%s", c.baseURL, url.PathEscape(workspace), url.PathEscape(fs.Type), url.PathEscape(fs.ID))
}
