package leanix

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// queryTemplate is a fixed GraphQL document and the variables its binder sets.
type queryTemplate struct {
	name      string
	text      string
	variables []string
}

// mustTemplate parses text and panics if it is not a single valid operation
// declaring exactly the given variables.
func mustTemplate(name, text string, variables ...string) queryTemplate {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: text})
	if err != nil {
		panic(fmt.Sprintf("leanix: invalid query %s: %v", name, err))
	}
	if len(doc.Operations) != 1 {
		panic(fmt.Sprintf("leanix: query %s must contain one operation, has %d", name, len(doc.Operations)))
	}
	declared := make([]string, 0, len(doc.Operations[0].VariableDefinitions))
	for _, v := range doc.Operations[0].VariableDefinitions {
		declared = append(declared, v.Variable)
	}
	if strings.Join(declared, ",") != strings.Join(variables, ",") {
		panic(fmt.Sprintf("leanix: query %s declares %v, binder sets %v", name, declared, variables))
	}
	return queryTemplate{name: name, text: text, variables: variables}
}

var byTypeQuery = mustTemplate("GetFactSheetsByType", `
	query GetFactSheetsByType($type: FactSheetType!) {
		allFactSheets(factSheetType: $type) {
			edges {
				node {
					id
					name
					displayName
					description
					type
					... on Application {
						lifecycle {
							phase
						}
					}
				}
			}
		}
	}
`, "type")

var byTypePaginatedQuery = mustTemplate("GetFactSheetsByTypePaginated", `
	query GetFactSheetsByTypePaginated($type: FactSheetType!, $first: Int, $after: String) {
		allFactSheets(factSheetType: $type, first: $first, after: $after) {
			totalCount
			pageInfo {
				hasNextPage
				endCursor
			}
			edges {
				node {
					id
					name
					displayName
					fullName
					type
					description
					status
					lxState
					completion {
						completion
						percentage
					}
					updatedAt
					createdAt
					tags {
						name
					}
					... on Application {
						lifecycle {
							asString
							phase
						}
						businessCriticality
						technicalSuitability
						functionalSuitability
					}
				}
			}
		}
	}
`, "type", "first", "after")

var searchByNameQuery = mustTemplate("SearchFactSheetsByName", `
	query SearchFactSheetsByName($name: String!) {
		allFactSheets(filter: { fullTextSearch: $name }) {
			edges {
				node {
					id
					name
					displayName
					fullName
					type
					description
					status
					lxState
					completion {
						completion
						percentage
					}
					updatedAt
					createdAt
					tags {
						name
					}
					subscriptions {
						edges {
							node {
								id
								type
								user {
									id
									displayName
									email
								}
								roles {
									id
									name
									comment
								}
								createdAt
							}
						}
						totalCount
					}
					... on Application {
						lifecycle {
							asString
						}
						businessCriticality
						technicalSuitability
						functionalSuitability
					}
				}
			}
		}
	}
`, "name")

var workspaceInfoQuery = mustTemplate("GetWorkspaceInfo", `
	query GetWorkspaceInfo {
		allFactSheets {
			totalCount
			filterOptions {
				facets {
					facetKey
					results {
						name
						key
						count
					}
				}
			}
		}
	}
`)

var typesQuery = mustTemplate("GetTypes", `
	query GetTypes {
		allFactSheets {
			filterOptions {
				facets {
					facetKey
					results {
						name
						key
					}
				}
			}
		}
	}
`)

func bindByType(typeName string) map[string]any {
	return map[string]any{"type": typeName}
}

// bindByTypePaginated leaves "after" out entirely when there is no cursor.
func bindByTypePaginated(typeName string, first int, after string) map[string]any {
	vars := map[string]any{
		"type":  typeName,
		"first": first,
	}
	if after != "" {
		vars["after"] = after
	}
	return vars
}

func bindSearch(term string) map[string]any {
	return map[string]any{"name": term}
}
