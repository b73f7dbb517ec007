// internal/search/query.go
package search

import "strings"

// Query filters a search over indexed ideas.
type Query struct {
	Text     string
	Industry string
	From     int
	Size     int
}

const (
	defaultSize = 20
	maxSize     = 100
)

func (q Query) size() int {
	switch {
	case q.Size <= 0:
		return defaultSize
	case q.Size > maxSize:
		return maxSize
	}
	return q.Size
}

// buildSearchQuery builds a bool query: free text over title, description and
// machine name, with an exact industry filter.
func buildSearchQuery(q Query) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if text := strings.TrimSpace(q.Text); text != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    []string{"businessTitle^3", "machineName^2", "description"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		})
	}
	if industry := strings.TrimSpace(q.Industry); industry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"industry.keyword": industry},
		})
	}
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	query := map[string]interface{}{
		"bool": map[string]interface{}{
			"must":   mustClauses,
			"filter": filterClauses,
		},
	}
	body := map[string]interface{}{
		"query": query,
		"from":  q.From,
		"size":  q.size(),
	}
	if strings.TrimSpace(q.Text) == "" {
		body["sort"] = []interface{}{map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}}}
	}
	return body
}
