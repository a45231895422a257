// Package openapi models an OpenAPI 3.1 document assembled from route metadata.
package openapi

import (
	"net/http"
	"strings"
)

const version = "3.1.0"

// Spec is the root document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec starts a document with the shared components already registered.
func NewSpec(title, apiVersion string) *Spec {
	return &Spec{
		OpenAPI:    version,
		Info:       &Info{Title: title, Version: apiVersion},
		Paths:      map[string]*PathItem{},
		Components: NewComponents(),
	}
}

func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddOperation attaches op to path. Methods PathItem has no slot for are dropped.
func (s *Spec) AddOperation(method, path string, op *Operation) {
	item := s.Paths[path]
	if item == nil {
		item = &PathItem{}
	}

	slot := item.slot(method)
	if slot == nil {
		return
	}
	*slot = op
	s.Paths[path] = item
}

func (p *PathItem) slot(method string) **Operation {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return &p.Get
	case http.MethodPost:
		return &p.Post
	case http.MethodPut:
		return &p.Put
	case http.MethodDelete:
		return &p.Delete
	default:
		return nil
	}
}

// ServeSpec serves the rendered document bytes.
func ServeSpec(doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(doc)
	}
}
