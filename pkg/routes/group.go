package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/medbrief/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	Walk(func(path string, route Route, _ []string) {
		mux.HandleFunc(route.Method+" "+path, route.Handler)
	}, groups...)
}

// Walk visits every route with its fully prefixed path and inherited tags.
func Walk(fn func(path string, route Route, tags []string), groups ...Group) {
	for _, group := range groups {
		walkGroup(fn, "", nil, group)
	}
}

// Document adds every route carrying OpenAPI metadata to spec under basePath.
// Wildcard segments such as {key...} are published as {key}.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	Walk(func(path string, route Route, tags []string) {
		if route.OpenAPI == nil {
			return
		}

		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}

		spec.AddOperation(route.Method, basePath+openAPIPath(path), &op)
	}, groups...)
}

func walkGroup(fn func(string, Route, []string), parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix

	tags := parentTags
	if len(group.Tags) > 0 {
		tags = group.Tags
	}

	for _, route := range group.Routes {
		fn(fullPrefix+route.Pattern, route, tags)
	}
	for _, child := range group.Children {
		walkGroup(fn, fullPrefix, tags, child)
	}
}

func openAPIPath(path string) string {
	if path == "" {
		return "/"
	}
	return strings.ReplaceAll(path, "...}", "}")
}
