package domain

// QueryResult is the successful output of the database query tool: the
// verified SQL, the translation's natural-language explanation, and the
// result rows in query order.
type QueryResult struct {
	Data        []map[string]interface{} `json:"data"`
	SQL         string                   `json:"sql"`
	Explanation string                   `json:"explanation"`
}
