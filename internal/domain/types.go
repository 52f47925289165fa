// Package domain defines the normalized catalog types for LeanIX fact sheets.
// These types mirror the fields the adapter requests from the Pathfinder GraphQL API;
// every field is optional because the set of fields present varies by fact sheet type.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FactSheet is one item in the LeanIX catalog (application, data object, interface, ...).
// Absent fields stay at their zero value and are omitted when encoded.
type FactSheet struct {
	ID                    string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name                  string         `json:"name,omitempty" yaml:"name,omitempty"`
	DisplayName           string         `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	FullName              string         `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Type                  string         `json:"type,omitempty" yaml:"type,omitempty"`
	Description           string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status                string         `json:"status,omitempty" yaml:"status,omitempty"`
	LxState               string         `json:"lxState,omitempty" yaml:"lxState,omitempty"`
	Completion            *Completion    `json:"completion,omitempty" yaml:"completion,omitempty"`
	UpdatedAt             string         `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"` // opaque, not parsed
	CreatedAt             string         `json:"createdAt,omitempty" yaml:"createdAt,omitempty"` // opaque, not parsed
	Tags                  []Tag          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Lifecycle             *Lifecycle     `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
	BusinessCriticality   string         `json:"businessCriticality,omitempty" yaml:"businessCriticality,omitempty"`
	TechnicalSuitability  string         `json:"technicalSuitability,omitempty" yaml:"technicalSuitability,omitempty"`
	FunctionalSuitability string         `json:"functionalSuitability,omitempty" yaml:"functionalSuitability,omitempty"`
	Subscriptions         *Subscriptions `json:"subscriptions,omitempty" yaml:"subscriptions,omitempty"`
}

// Completion describes how completely a fact sheet is filled in.
type Completion struct {
	Completion string `json:"completion,omitempty" yaml:"completion,omitempty"`
	Percentage *int   `json:"percentage,omitempty" yaml:"percentage,omitempty"` // 0-100
}

// UnmarshalJSON accepts completion as a string or a number, keeping the
// number's literal text, and truncates a fractional percentage.
func (c *Completion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Completion json.RawMessage `json:"completion"`
		Percentage json.RawMessage `json:"percentage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	completion, err := scalarText(raw.Completion)
	if err != nil {
		return fmt.Errorf("completion: %w", err)
	}
	pct, err := scalarText(raw.Percentage)
	if err != nil {
		return fmt.Errorf("percentage: %w", err)
	}

	c.Completion = completion
	c.Percentage = nil
	if pct != "" {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return fmt.Errorf("percentage %q is not a number", pct)
		}
		n := int(f)
		c.Percentage = &n
	}
	return nil
}

// scalarText returns the text of a JSON string or number, or "" for an
// absent or null value.
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Tag is a tag attached to a fact sheet.
type Tag struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Lifecycle is the current lifecycle phase of a fact sheet.
type Lifecycle struct {
	AsString string `json:"asString,omitempty" yaml:"asString,omitempty"`
	Phase    string `json:"phase,omitempty" yaml:"phase,omitempty"`
}

// Subscriptions is the connection of users subscribed to a fact sheet.
type Subscriptions struct {
	Edges      []SubscriptionEdge `json:"edges,omitempty" yaml:"edges,omitempty"`
	TotalCount *int               `json:"totalCount,omitempty" yaml:"totalCount,omitempty"`
}

// SubscriptionEdge wraps one subscription node.
type SubscriptionEdge struct {
	Node *Subscription `json:"node,omitempty" yaml:"node,omitempty"`
}

// Subscription links a user to a fact sheet with a subscription type and roles.
type Subscription struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"` // RESPONSIBLE, ACCOUNTABLE, OBSERVER
	User      *User  `json:"user,omitempty" yaml:"user,omitempty"`
	Roles     []Role `json:"roles,omitempty" yaml:"roles,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// User is the owner of a subscription.
type User struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Role is a subscription role such as "Business Owner".
type Role struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// TagNames returns the tag names in order.
func (f FactSheet) TagNames() []string {
	if len(f.Tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Title returns the best human-readable label for the fact sheet.
func (f FactSheet) Title() string {
	switch {
	case f.DisplayName != "":
		return f.DisplayName
	case f.FullName != "":
		return f.FullName
	case f.Name != "":
		return f.Name
	default:
		return f.ID
	}
}

// PageInfo is the cursor state of a paginated allFactSheets query.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage" yaml:"hasNextPage"`
	EndCursor   *string `json:"endCursor" yaml:"endCursor"` // nil when the server sent none
}

// FactSheetEdge wraps one fact sheet of a page.
type FactSheetEdge struct {
	Node FactSheet `json:"node" yaml:"node"`
}

// Page is one page of an allFactSheets connection, kept in the upstream shape
// so callers can pass PageInfo.EndCursor back to request the next page.
type Page struct {
	TotalCount *int            `json:"totalCount,omitempty" yaml:"totalCount,omitempty"`
	PageInfo   PageInfo        `json:"pageInfo" yaml:"pageInfo"`
	Edges      []FactSheetEdge `json:"edges" yaml:"edges"`
}

// FactSheets returns the nodes of the page in order.
func (p Page) FactSheets() []FactSheet {
	out := make([]FactSheet, 0, len(p.Edges))
	for _, e := range p.Edges {
		out = append(out, e.Node)
	}
	return out
}

// Facet is a group of filter values exposed by the workspace, e.g. the
// "FactSheetTypes" facet listing every type with its fact sheet count.
type Facet struct {
	FacetKey string        `json:"facetKey" yaml:"facetKey"`
	Results  []FacetResult `json:"results" yaml:"results"`
}

// FacetResult is one value of a facet.
type FacetResult struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Count *int   `json:"count,omitempty" yaml:"count,omitempty"`
}
