package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.PathValue("key")))
}

func testGroups() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/summaries",
			Tags:   []string{"Summaries"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: ok, OpenAPI: &openapi.Operation{Summary: "List summaries"}},
				{Method: "GET", Pattern: "/{id}", Handler: ok},
			},
			Children: []routes.Group{
				{
					Prefix: "/files",
					Routes: []routes.Route{
						{Method: "GET", Pattern: "/{key...}", Handler: ok, OpenAPI: &openapi.Operation{Summary: "Get file"}},
					},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, testGroups()...)

	req := httptest.NewRequest(http.MethodGet, "/summaries/files/a/b.pdf", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "a/b.pdf" {
		t.Errorf("key = %q", rec.Body.String())
	}
}

func TestDocument(t *testing.T) {
	spec := openapi.NewSpec("test", "1.0.0")
	routes.Document(spec, "/api", testGroups()...)

	if len(spec.Paths) != 2 {
		t.Fatalf("paths = %d, want 2 (undocumented routes skipped)", len(spec.Paths))
	}

	list, ok := spec.Paths["/api/summaries"]
	if !ok || list.Get == nil {
		t.Fatal("missing GET /api/summaries")
	}
	if len(list.Get.Tags) != 1 || list.Get.Tags[0] != "Summaries" {
		t.Errorf("tags = %v", list.Get.Tags)
	}

	if _, ok := spec.Paths["/api/summaries/files/{key}"]; !ok {
		t.Errorf("wildcard path not normalized: %v", spec.Paths)
	}
}
