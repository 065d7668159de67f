// Package schemas holds the JSON Schema documents for the records jobfit reads and writes.
package schemas

import "embed"

// Schema file names
const (
	ProfileSchema         = "profile.schema.json"
	ScoringResponseSchema = "scoring_response.schema.json"
)

// FS contains every schema document in this directory.
//
//go:embed *.schema.json
var FS embed.FS
