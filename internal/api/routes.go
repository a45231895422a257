package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/medbrief/internal/chat"
	"github.com/JaimeStill/medbrief/internal/config"
	"github.com/JaimeStill/medbrief/internal/letters"
	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/internal/timeline"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Summaries.Handler(cfg.API.MaxUploadSizeBytes(), cfg.API.MaxFiles).Routes(),
		domain.Timeline.Handler().Routes(),
		domain.Letters.Handler().Routes(),
		domain.Chat.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize).routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return fmt.Errorf("openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.OpenAPI.Server(cfg.API.BasePath))

	for _, schemas := range []map[string]*openapi.Schema{
		summaries.Schemas(),
		timeline.Schemas(),
		letters.Schemas(),
		chat.Schemas(),
		prompts.Schemas(),
		storageSchemas(),
	} {
		spec.Components.AddSchemas(schemas)
	}

	routes.Document(spec, "", groups...)
	return openapi.MarshalJSON(spec)
}
