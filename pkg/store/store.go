// Package store persists design documents by name.
//
// Two backends are provided: [FileStore] keeps one JSON file per design in a
// directory, [MongoStore] keeps them in a MongoDB collection. Both store the
// document exactly as [pkgio.WriteDocument] writes it, so a design saved by
// the server can be built by the CLI and vice versa.
package store

import (
	"context"
	"regexp"

	"github.com/matzehuels/photonlayout/pkg/errors"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
)

// Store saves and loads design documents.
type Store interface {
	// Get returns the named document, or a NOT_FOUND error.
	Get(ctx context.Context, name string) (*pkgio.Document, error)
	// Put creates or replaces the named document.
	Put(ctx context.Context, name string, doc *pkgio.Document) error
	// Delete removes the named document. Deleting a missing one is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidateName rejects names that are unsafe as file names or keys.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid design name %q", name)
	}
	return nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "design %q not found", name)
}
