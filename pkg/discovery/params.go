package discovery

import (
	"regexp"
	"strings"
)

var pathParamPattern = regexp.MustCompile(`\{[^}]+\}`)

// ResolvePathParams substitutes concrete probe values for the template
// parameters in a contract path. The namespace parameter takes the
// namespace being swept; name and id take fixed well-known values the
// reference deployments seed; anything else falls back to a generic
// placeholder.
func ResolvePathParams(path, namespace string) string {
	return pathParamPattern.ReplaceAllStringFunc(path, func(param string) string {
		switch strings.ToLower(strings.Trim(param, "{}")) {
		case "namespace":
			return namespace
		case "name":
			return "sample-name"
		case "id":
			return "sample-id"
		default:
			return "sample"
		}
	})
}
