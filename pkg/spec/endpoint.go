package spec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getdriftd/driftd/pkg/schema"
)

// Endpoint is one sampleable operation from a published contract.
type Endpoint struct {
	Path        string
	Method      string
	OperationID string

	// StatusCode is the success status the contract documents for this
	// operation, 0 when the contract documents none.
	StatusCode int

	// Response is the documented JSON response schema, nil when the
	// operation publishes no application/json body.
	Response *schema.Doc

	Source string
}

// Endpoints extracts every operation from the document in deterministic
// order: paths sorted, methods in a fixed order within each path.
func (d *Document) Endpoints() []*Endpoint {
	if d == nil || d.Doc == nil || d.Doc.Paths == nil {
		return nil
	}

	pathMap := d.Doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var endpoints []*Endpoint
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}

		operations := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
			{"HEAD", item.Head},
			{"OPTIONS", item.Options},
		}

		for _, entry := range operations {
			if entry.op == nil {
				continue
			}

			ep := &Endpoint{
				Path:        path,
				Method:      entry.method,
				OperationID: entry.op.OperationID,
				Source:      d.Source,
			}

			status, resp := bestResponse(entry.op)
			ep.StatusCode = status
			if mt := jsonMediaType(resp); mt != nil {
				ep.Response = Convert(mt.Schema)
			}
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

// bestResponse picks the lowest documented 2xx response, falling back to
// the default response when no numeric 2xx exists.
func bestResponse(op *openapi3.Operation) (int, *openapi3.Response) {
	if op.Responses == nil || op.Responses.Len() == 0 {
		return 0, nil
	}

	byStatus := op.Responses.Map()
	codes := make([]string, 0, len(byStatus))
	for code := range byStatus {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		n, err := strconv.Atoi(code)
		if err != nil || n < 200 || n > 299 {
			continue
		}
		if ref := byStatus[code]; ref != nil && ref.Value != nil {
			return n, ref.Value
		}
	}

	if ref := byStatus["default"]; ref != nil && ref.Value != nil {
		return 200, ref.Value
	}
	return 0, nil
}

// jsonMediaType finds the JSON content entry of a response. Exact
// application/json wins, then any json-flavored media type such as
// application/problem+json.
func jsonMediaType(resp *openapi3.Response) *openapi3.MediaType {
	if resp == nil || len(resp.Content) == 0 {
		return nil
	}
	if mt := resp.Content.Get("application/json"); mt != nil {
		return mt
	}

	keys := make([]string, 0, len(resp.Content))
	for k := range resp.Content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, "json") {
			return resp.Content[k]
		}
	}
	return nil
}
