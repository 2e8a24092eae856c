// Package services holds the two gate workflows. Enrollment binds a new
// credential digest to an identity number; authentication checks a live
// feature against everything enrolled so far.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/config"
	"github.com/dmitrijs2005/facegate/internal/cryptox"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
	"github.com/dmitrijs2005/facegate/internal/repositories/credentials"
	"github.com/google/uuid"
)

// FeatureSource yields live feature strings from the camera module.
type FeatureSource interface {
	Acquire(ctx context.Context, timeout time.Duration) (string, error)
}

// Signaler reports the authentication outcome back to the camera module.
type Signaler interface {
	Signal(ctx context.Context, pass bool) error
}

// Transport is what a camera link provides.
type Transport interface {
	FeatureSource
	Signaler
}

// Display renders workflow feedback. It never sees digests or features.
type Display interface {
	Scroll(ctx context.Context, text string)
	ShowNumber(ctx context.Context, n models.IdentityNumber)
	Clear(ctx context.Context)
}

// Messages scrolled on the display.
const (
	MsgAuth      = "Auth"
	MsgFail      = "Fail"
	MsgSaveError = "Save Err"
)

type nopDisplay struct{}

func (nopDisplay) Scroll(context.Context, string) {}
func (nopDisplay) ShowNumber(context.Context, models.IdentityNumber) {}
func (nopDisplay) Clear(context.Context) {}

// EnrollResult describes a completed enrollment.
type EnrollResult struct {
	Hash     string
	Identity models.IdentityNumber
}

// AuthResult describes an authentication attempt. Identity is meaningful
// only when Passed; Bound is false when the digest matched but no binding
// record exists, in which case Identity is models.Unbound.
type AuthResult struct {
	Passed   bool
	Identity models.IdentityNumber
	Bound    bool
}

type GateService struct {
	repo           credentials.Repository
	transport      Transport
	display        Display
	logger         logging.Logger
	acquireTimeout time.Duration

	mu sync.Mutex
}

// NewGateService wires the workflows. display may be nil.
func NewGateService(repo credentials.Repository, transport Transport, display Display, cfg *config.Config, logger logging.Logger) *GateService {
	if display == nil {
		display = nopDisplay{}
	}
	return &GateService{
		repo:           repo,
		transport:      transport,
		display:        display,
		logger:         logger.With("module", "gate"),
		acquireTimeout: cfg.AcquireTimeout,
	}
}

func (s *GateService) begin(workflow string) (logging.Logger, func(), error) {
	if !s.mu.TryLock() {
		return nil, nil, common.ErrBusy
	}
	return s.logger.With("workflow", workflow, "run_id", uuid.NewString()), s.mu.Unlock, nil
}

// Enroll waits for a feature, then appends its digest to the credential log
// and, only if that succeeded, the binding to id. Nothing is retried: a
// failed append ends the run and the operator starts over.
func (s *GateService) Enroll(ctx context.Context, id models.IdentityNumber) (EnrollResult, error) {
	if id <= models.Unbound {
		return EnrollResult{}, fmt.Errorf("%w: %d", common.ErrInvalidIdentity, id)
	}

	log, done, err := s.begin("enroll")
	if err != nil {
		return EnrollResult{}, err
	}
	defer done()
	defer s.display.Clear(ctx)

	log.Info(ctx, "enrollment started", "identity", int(id))
	s.display.Scroll(ctx, fmt.Sprintf("Enroll %d", id))
	log.Debug(ctx, "state", "state", "awaiting_feature")

	feature, err := s.transport.Acquire(ctx, s.acquireTimeout)
	if err != nil {
		log.Warn(ctx, "enrollment aborted", "stage", "acquire", "error", err)
		return EnrollResult{}, fmt.Errorf("acquire feature: %w", err)
	}

	hash := cryptox.Digest(feature)
	log.Debug(ctx, "state", "state", "hashed", "hash", hash)

	if err := s.repo.AppendCredential(ctx, hash); err != nil {
		log.Error(ctx, "enrollment failed", "stage", "append_credential", "error", err)
		s.display.Scroll(ctx, MsgSaveError)
		return EnrollResult{}, err
	}

	if err := s.repo.AppendBinding(ctx, hash, id); err != nil {
		// The credential record stays; it resolves to Unbound from now on.
		log.Error(ctx, "enrollment failed", "stage", "append_binding", "hash", hash, "error", err)
		s.display.Scroll(ctx, MsgSaveError)
		return EnrollResult{}, err
	}

	log.Info(ctx, "enrollment succeeded", "identity", int(id), "hash", hash)
	s.display.ShowNumber(ctx, id)

	return EnrollResult{Hash: hash, Identity: id}, nil
}

// Authenticate waits for a feature and checks its digest against a fresh
// load of both logs. A mismatch is a normal outcome and returns a result
// with Passed=false and a nil error. Errors are reserved for acquisition
// and store faults; a store fault also signals fail to the camera.
func (s *GateService) Authenticate(ctx context.Context) (AuthResult, error) {
	log, done, err := s.begin("authenticate")
	if err != nil {
		return AuthResult{}, err
	}
	defer done()
	defer s.display.Clear(ctx)

	log.Info(ctx, "authentication started")
	s.display.Scroll(ctx, MsgAuth)
	log.Debug(ctx, "state", "state", "awaiting_feature")

	feature, err := s.transport.Acquire(ctx, s.acquireTimeout)
	if err != nil {
		log.Warn(ctx, "authentication aborted", "stage", "acquire", "error", err)
		return AuthResult{}, fmt.Errorf("acquire feature: %w", err)
	}

	hash := cryptox.Digest(feature)
	log.Debug(ctx, "state", "state", "comparing")

	creds, bindings, err := s.repo.Snapshot(ctx)
	if err != nil {
		log.Error(ctx, "authentication failed", "stage", "load", "error", err)
		s.signal(ctx, log, false)
		s.display.Scroll(ctx, MsgFail)
		return AuthResult{}, err
	}

	if !creds.Contains(hash) {
		log.Info(ctx, "authentication rejected", "enrolled", len(creds))
		s.signal(ctx, log, false)
		s.display.Scroll(ctx, MsgFail)
		return AuthResult{}, nil
	}

	id, bound := bindings.Resolve(hash)
	if !bound {
		log.Warn(ctx, "matched credential has no binding", "hash", hash)
	}

	log.Info(ctx, "authentication passed", "identity", int(id), "bound", bound)
	s.signal(ctx, log, true)
	s.display.ShowNumber(ctx, id)

	return AuthResult{Passed: true, Identity: id, Bound: bound}, nil
}

// signal failures are logged only; the decision has already been made.
func (s *GateService) signal(ctx context.Context, log logging.Logger, pass bool) {
	if err := s.transport.Signal(ctx, pass); err != nil {
		log.Error(ctx, "signal failed", "pass", pass, "error", err)
	}
}
