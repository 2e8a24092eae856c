package credentials

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/cryptox"
	"github.com/dmitrijs2005/facegate/internal/filex"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
)

var _ Repository = (*FileRepository)(nil)

// FileRepository keeps the two logs as flat text files:
//
//	face_hashes.txt   <digest>\n
//	hash_to_num.txt   <digest>:<identity>\n
//
// No handle is held between calls. The mutex serializes appends and loads
// of this process; the files themselves carry no locking.
type FileRepository struct {
	credentialPath string
	bindingPath    string
	logger         logging.Logger
	mu             sync.Mutex
}

// NewFileRepository returns a repository over the given log paths. The
// files are created lazily.
func NewFileRepository(credentialPath, bindingPath string, logger logging.Logger) *FileRepository {
	return &FileRepository{
		credentialPath: credentialPath,
		bindingPath:    bindingPath,
		logger:         logger.With("module", "file_store"),
	}
}

func (r *FileRepository) AppendCredential(ctx context.Context, hash string) error {
	if err := cryptox.ValidateDigest(hash); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := filex.AppendLine(r.credentialPath, hash); err != nil {
		r.logger.Error(ctx, "credential append failed", "digest", hash, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStoreWriteFailed, err)
	}
	r.logger.Debug(ctx, "credential appended", "digest", hash)
	return nil
}

func (r *FileRepository) LoadCredentials(ctx context.Context) (models.CredentialSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadCredentials()
}

func (r *FileRepository) loadCredentials() (models.CredentialSet, error) {
	lines, err := filex.ReadLines(r.credentialPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreReadFailed, err)
	}
	return models.NewCredentialSet(lines...), nil
}

func (r *FileRepository) AppendBinding(ctx context.Context, hash string, id models.IdentityNumber) error {
	if err := cryptox.ValidateDigest(hash); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := filex.AppendLine(r.bindingPath, FormatBinding(hash, id)); err != nil {
		r.logger.Error(ctx, "binding append failed", "digest", hash, "identity", id, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStoreWriteFailed, err)
	}
	r.logger.Debug(ctx, "binding appended", "digest", hash, "identity", id)
	return nil
}

func (r *FileRepository) LoadBindings(ctx context.Context) (models.BindingTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadBindings(ctx)
}

// Snapshot loads both logs under one lock.
func (r *FileRepository) Snapshot(ctx context.Context) (models.CredentialSet, models.BindingTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.loadCredentials()
	if err != nil {
		return nil, nil, err
	}
	table, err := r.loadBindings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return set, table, nil
}

func (r *FileRepository) loadBindings(ctx context.Context) (models.BindingTable, error) {
	lines, err := filex.ReadLines(r.bindingPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreReadFailed, err)
	}

	table := make(models.BindingTable, len(lines))
	for n, line := range lines {
		b, err := ParseBinding(line)
		if err != nil {
			r.logger.Warn(ctx, "skipping binding record", "line", n+1, "error", err)
			continue
		}
		table.Set(b.Hash, b.Identity)
	}
	return table, nil
}

// Close is a no-op; files are closed after every call.
func (r *FileRepository) Close() error {
	return nil
}

// FormatBinding renders one binding log record without the newline.
func FormatBinding(hash string, id models.IdentityNumber) string {
	return hash + ":" + strconv.Itoa(int(id))
}

// ParseBinding splits a binding record on its first colon.
func ParseBinding(line string) (models.Binding, error) {
	hash, num, ok := strings.Cut(strings.TrimSpace(line), ":")
	if !ok {
		return models.Binding{}, fmt.Errorf("%w: missing separator", common.ErrMalformedRecord)
	}
	if hash == "" {
		return models.Binding{}, fmt.Errorf("%w: empty digest", common.ErrMalformedRecord)
	}
	id, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return models.Binding{}, fmt.Errorf("%w: identity %q: %w", common.ErrMalformedRecord, num, err)
	}
	return models.Binding{Hash: hash, Identity: models.IdentityNumber(id)}, nil
}
