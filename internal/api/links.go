package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/style>; rel="style"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/style>; rel="style"`,
	},
	"/api/v1/style": {
		`</api/v1/style/layers>; rel="layers"`,
		`</api/v1/style/errors>; rel="errors"`,
		`</api/v1/style/history>; rel="history"`,
		`</api/v1/style/metadata>; rel="metadata"`,
	},
	"/api/v1/style/layers": {
		`</api/v1/style>; rel="style"`,
		`</api/v1/style/select>; rel="select"`,
	},
	"/api/v1/style/layers/{index}": {
		`</api/v1/style/layers>; rel="collection"`,
	},
	"/api/v1/style/history": {
		`</api/v1/style/undo>; rel="undo"`,
		`</api/v1/style/redo>; rel="redo"`,
		`</api/v1/style/snapshots>; rel="snapshots"`,
	},
	"/api/v1/style/errors": {
		`</api/v1/style>; rel="style"`,
		`</api/v1/validate>; rel="validate"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link
// headers into successful responses. Every response also points at the
// OpenAPI document.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil || !strings.HasPrefix(status, "2") {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}
		ctx.AppendHeader("Link", `</openapi.json>; rel="describedby"`)

		return v, nil
	}
}
