// Package handler implements the HTTP handlers for the Recipe Box API.
// All handlers are methods on Server; they are split into resource-specific
// files (recipe.go, tag.go, etc.) but share the same Server struct so they
// can access its dependencies. Routing lives in Routes.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/recipe-box/internal/domain"
)

// RecipeServicer defines the business operations the recipe handlers depend
// on. Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching storage or the service layer.
type RecipeServicer interface {
	Create(ctx context.Context, rec domain.Recipe) (domain.Recipe, error)
	GetByID(ctx context.Context, id string) (domain.Recipe, error)
	List(ctx context.Context) ([]domain.Recipe, error)
	FilterByTags(ctx context.Context, tagNames []string, matchAll bool) ([]domain.Recipe, error)
	Update(ctx context.Context, rec domain.Recipe) (domain.Recipe, error)
	Delete(ctx context.Context, id string) error
}

// TagServicer defines the business operations the tag handlers depend on.
type TagServicer interface {
	List(ctx context.Context) ([]domain.TagCount, error)
	Rename(ctx context.Context, oldName, newName string) error
	Delete(ctx context.Context, name string) error
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) (domain.Export, error)
}

// MaintenanceServicer defines the repair operations the admin handlers
// depend on.
type MaintenanceServicer interface {
	RebuildIndex(ctx context.Context) error
	Audit(ctx context.Context) ([]domain.Inconsistency, error)
}

// Server implements all API endpoints. Wire it in main.go by mounting
// Routes() on the router. Methods are in resource-specific files but all
// operate on this struct.
type Server struct {
	recipes     RecipeServicer
	tags        TagServicer
	export      ExportServicer
	maintenance MaintenanceServicer
	openapi     []byte
}

// NewServer constructs the Server with all its dependencies.
// openapi is the raw spec document served at /openapi.yaml; pass spec.OpenAPI.
func NewServer(recipes RecipeServicer, tags TagServicer, export ExportServicer, maintenance MaintenanceServicer, openapi []byte) *Server {
	return &Server{
		recipes:     recipes,
		tags:        tags,
		export:      export,
		maintenance: maintenance,
		openapi:     openapi,
	}
}

// Routes returns the chi router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/docs", s.GetDocs)

	r.Route("/api", func(r chi.Router) {
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.ListRecipes)
			r.Post("/", s.CreateRecipe)
			r.Get("/{recipeID}", s.GetRecipe)
			r.Put("/{recipeID}", s.UpdateRecipe)
			r.Delete("/{recipeID}", s.DeleteRecipe)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.ListTags)
			r.Put("/{name}", s.RenameTag)
			r.Delete("/{name}", s.DeleteTag)
		})
		r.Get("/export", s.GetExport)
		r.Post("/index/rebuild", s.RebuildIndex)
		r.Get("/index/audit", s.AuditIndex)
	})

	return r
}
