// Package credentials is the credential store: two append-only logs, one
// of valid digests and one of digest-to-identity bindings. Records are only
// ever appended; loads rebuild the in-memory view from durable state.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/facegate/internal/models"
)

// Repository is implemented by every store backend.
//
// Contract:
//   - AppendCredential / AppendBinding durably append one record and return
//     an error wrapping common.ErrStoreWriteFailed on I/O failure.
//   - LoadCredentials / LoadBindings read the whole log. A log that does not
//     exist yet is an empty store, not an error.
//   - LoadBindings replays records in append order, so the latest record for
//     a digest wins. Unparsable records are skipped.
//   - Snapshot loads both logs as one consistent view.
type Repository interface {
	AppendCredential(ctx context.Context, hash string) error
	LoadCredentials(ctx context.Context) (models.CredentialSet, error)
	AppendBinding(ctx context.Context, hash string, id models.IdentityNumber) error
	LoadBindings(ctx context.Context) (models.BindingTable, error)
	Snapshot(ctx context.Context) (models.CredentialSet, models.BindingTable, error)
	Close() error
}
