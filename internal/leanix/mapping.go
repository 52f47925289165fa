package leanix

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/lxerr"
)

// lookup walks doc one object key at a time. It reports false as soon as a
// step is not an object, or the key is missing or null.
func lookup(doc gjson.Result, path ...string) (gjson.Result, bool) {
	cur := doc
	for _, key := range path {
		if !cur.IsObject() {
			return gjson.Result{}, false
		}
		cur = cur.Get(key)
		if !cur.Exists() || cur.Type == gjson.Null {
			return gjson.Result{}, false
		}
	}
	return cur, true
}

// mapFactSheetEdges maps data.allFactSheets.edges[].node. A missing or
// non-array path yields an empty slice.
func mapFactSheetEdges(doc gjson.Result, op string) ([]domain.FactSheet, error) {
	conn, _ := lookup(doc, "data", "allFactSheets")
	return mapEdges(conn, op)
}

// mapEdges maps the edges of a connection. Edges without a node are skipped;
// any node that does not decode fails the whole batch.
func mapEdges(conn gjson.Result, op string) ([]domain.FactSheet, error) {
	factSheets := []domain.FactSheet{}

	edges, ok := lookup(conn, "edges")
	if !ok || !edges.IsArray() {
		return factSheets, nil
	}

	for i, edge := range edges.Array() {
		node, ok := lookup(edge, "node")
		if !ok {
			continue
		}
		fs, err := decodeFactSheet(node)
		if err != nil {
			return nil, lxerr.Mapping(op, fmt.Errorf("edge %d: %w", i, err))
		}
		factSheets = append(factSheets, fs)
	}

	return factSheets, nil
}

func decodeFactSheet(node gjson.Result) (domain.FactSheet, error) {
	var fs domain.FactSheet
	if !node.IsObject() {
		return fs, errors.New("node is not an object")
	}
	if err := json.Unmarshal([]byte(node.Raw), &fs); err != nil {
		return fs, err
	}
	return fs, nil
}

// mapPage maps data.allFactSheets into a page. A missing connection yields an
// empty page without a next page.
func mapPage(doc gjson.Result, op string) (domain.Page, error) {
	page := domain.Page{Edges: []domain.FactSheetEdge{}}

	conn, ok := lookup(doc, "data", "allFactSheets")
	if !ok {
		return page, nil
	}

	if total, ok := lookup(conn, "totalCount"); ok && total.Type == gjson.Number {
		n := int(total.Int())
		page.TotalCount = &n
	}
	if next, ok := lookup(conn, "pageInfo", "hasNextPage"); ok {
		page.PageInfo.HasNextPage = next.Type == gjson.True
	}
	if cursor, ok := lookup(conn, "pageInfo", "endCursor"); ok && cursor.Type == gjson.String {
		s := cursor.String()
		page.PageInfo.EndCursor = &s
	}

	factSheets, err := mapEdges(conn, op)
	if err != nil {
		return domain.Page{}, err
	}
	for _, fs := range factSheets {
		page.Edges = append(page.Edges, domain.FactSheetEdge{Node: fs})
	}

	return page, nil
}

// mapFacets maps data.allFactSheets.filterOptions.facets.
func mapFacets(doc gjson.Result, op string) ([]domain.Facet, error) {
	out := []domain.Facet{}

	facets, ok := lookup(doc, "data", "allFactSheets", "filterOptions", "facets")
	if !ok || !facets.IsArray() {
		return out, nil
	}

	for i, f := range facets.Array() {
		if f.Type == gjson.Null {
			continue
		}
		if !f.IsObject() {
			return nil, lxerr.Mapping(op, fmt.Errorf("facet %d is not an object", i))
		}
		var facet domain.Facet
		if err := json.Unmarshal([]byte(f.Raw), &facet); err != nil {
			return nil, lxerr.Mapping(op, fmt.Errorf("facet %d: %w", i, err))
		}
		out = append(out, facet)
	}

	return out, nil
}
