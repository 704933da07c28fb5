// Package repo defines the persistence contracts for the Recipe Box core and
// provides their Postgres implementations. The JSON-file implementations live
// in internal/filestore; both backends satisfy the same interfaces, so the
// service layer never knows which one it is talking to.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/recipe-box/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// nested transaction (a savepoint), so multi-statement index updates stay
// atomic under both wirings.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecipeRepo defines the persistence operations for recipe records.
// The service layer depends on this interface, not a concrete backend, which
// allows it to be unit-tested with a mock and run against either the file
// store or Postgres in production.
type RecipeRepo interface {
	// NextID allocates a recipe id guaranteed distinct from every id
	// currently stored and every id previously handed out by this instance.
	// An enumeration failure is returned as an error — an id is never
	// silently reused.
	NextID(ctx context.Context) (string, error)

	// Get retrieves a single recipe by id.
	// Returns domain.ErrNotFound if no recipe with that id exists.
	Get(ctx context.Context, id string) (domain.Recipe, error)

	// List returns all readable recipes in unspecified order. Records that
	// cannot be decoded are skipped and logged, never failing the whole call.
	List(ctx context.Context) ([]domain.Recipe, error)

	// Put durably persists the complete record under recipe.ID, overwriting
	// any previous version. The caller supplies the full record; partial
	// merges are not supported. A put that returns nil is visible to a
	// subsequent Get from a fresh process — no partial writes are observable.
	Put(ctx context.Context, recipe domain.Recipe) error

	// Delete removes a recipe by id.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// TagIndex defines the persistence operations for the reverse mapping from
// canonical tag name to the set of recipe ids referencing it.
// All mutation goes through ApplyDelta or Replace so the empty-set lifecycle
// rule (a tag exists iff its recipe set is non-empty) is enforced in exactly
// one place per backend.
type TagIndex interface {
	// NamesFor returns the canonical tag names currently associated with the
	// recipe id, sorted. A recipe with no tags yields an empty slice.
	NamesFor(ctx context.Context, recipeID string) ([]string, error)

	// ApplyDelta updates the index for one recipe. Names are canonicalized
	// and empty names dropped. Removals are applied before additions so a
	// name present in both sets is never transiently destroyed. Tags whose
	// recipe set becomes empty are deleted; tags named in added are created
	// on first reference. The whole cycle is serialized against concurrent
	// ApplyDelta calls and persisted atomically.
	ApplyDelta(ctx context.Context, recipeID string, added, removed []string) error

	// AllTags returns every tag with its recipe count, ordered by name.
	AllTags(ctx context.Context) ([]domain.TagCount, error)

	// Rename changes a tag's name. Only permitted while the tag has zero
	// associated recipes. Returns domain.ErrNotFound if old is absent,
	// domain.ErrTagInUse if it still has recipes, and domain.ErrConflict if
	// a tag named new already exists.
	Rename(ctx context.Context, oldName, newName string) error

	// Delete removes a tag outright. Same zero-association precondition as
	// Rename: domain.ErrNotFound if absent, domain.ErrTagInUse otherwise.
	Delete(ctx context.Context, name string) error

	// Replace atomically swaps the entire persisted index for the given
	// name → recipe ids mapping. Used by the rebuild repair pass.
	Replace(ctx context.Context, index map[string][]string) error
}
