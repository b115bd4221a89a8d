// Package session owns the signed-in state of the device.
//
// Service is the only component that changes who is signed in. It keeps
// the in-memory State, the persisted registry and the persisted session
// pointer consistent by running every login, register and logout through
// a single critical section. Observers use Watch to receive the current
// State followed by every later transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expensetracker/internal/common"
	"github.com/dmitrijs2005/expensetracker/internal/cryptox"
	"github.com/dmitrijs2005/expensetracker/internal/logging"
	"github.com/dmitrijs2005/expensetracker/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// CredentialStore is the persistence the Service needs. Implemented by
// *credstore.Store.
type CredentialStore interface {
	LoadRegistry(ctx context.Context) (models.Registry, error)
	SaveRegistry(ctx context.Context, reg models.Registry) error
	LoadSessionPointer(ctx context.Context) (*models.UserRecord, error)
	SaveSessionPointer(ctx context.Context, u *models.UserRecord) error
}

type Service struct {
	store  CredentialStore
	hasher cryptox.Hasher
	log    logging.Logger

	// guards every store round trip made by Login, Register and Logout
	sem   *semaphore.Weighted
	state *cell

	genericErrors bool
	newID         func() string

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithGenericErrors makes Login report an unknown email as
// common.ErrInvalidCredentials, after spending the same hashing effort as
// a real password check.
func WithGenericErrors(on bool) Option {
	return func(s *Service) { s.genericErrors = on }
}

// WithIDGenerator replaces the random account id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService derives the initial State from the stored session pointer.
// A pointer to an account that is no longer registered yields the signed-out
// State; the pointer itself is left in place until the next Logout.
func NewService(ctx context.Context, store CredentialStore, hasher cryptox.Hasher, opts ...Option) (*Service, error) {
	s := &Service{
		store:  store,
		hasher: hasher,
		log:    logging.Nop(),
		sem:    semaphore.NewWeighted(1),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}

	initial, err := s.restore(ctx)
	if err != nil {
		return nil, err
	}
	s.state = newCell(initial)
	return s, nil
}

func (s *Service) restore(ctx context.Context) (models.State, error) {
	pointer, err := s.store.LoadSessionPointer(ctx)
	if err != nil {
		return models.Unauthenticated, err
	}
	if pointer == nil {
		return models.Unauthenticated, nil
	}

	reg, err := s.store.LoadRegistry(ctx)
	if err != nil {
		return models.Unauthenticated, err
	}

	u, ok := reg.Resolve(pointer)
	if !ok {
		s.log.Warn(ctx, "session pointer references unknown account", "email", pointer.Email)
		return models.Unauthenticated, nil
	}

	s.log.Info(ctx, "session restored", "email", u.Email)
	return models.Authenticated(*u), nil
}

// lock enters the critical section. Once inside, work continues on a context
// that ignores the caller's cancellation so a transition is never left half
// done; the store's own timeout still bounds each round trip.
func (s *Service) lock(ctx context.Context) (context.Context, func(), error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	return context.WithoutCancel(ctx), func() { s.sem.Release(1) }, nil
}

// Login signs in the account registered under email.
func (s *Service) Login(ctx context.Context, email, password string) (*models.UserRecord, error) {
	u, err := s.login(ctx, email, password)
	if err != nil {
		s.logFailure(ctx, "sign in", email, err)
	}
	return u, err
}

func (s *Service) login(ctx context.Context, email, password string) (*models.UserRecord, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrInvalidInput)
	}

	ctx, unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	reg, err := s.store.LoadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	u, ok := reg.Lookup(email)
	if !ok {
		if s.genericErrors {
			s.burnVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}

	match, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		s.log.Warn(ctx, "stored password hash cannot be checked", "email", email, "error", err)
	}
	if !match {
		return nil, common.ErrInvalidCredentials
	}

	if err := s.store.SaveSessionPointer(ctx, &u); err != nil {
		return nil, err
	}

	s.state.Store(models.Authenticated(u))
	s.log.Info(ctx, "signed in", "email", email)
	return &u, nil
}

func (s *Service) logFailure(ctx context.Context, op, email string, err error) {
	switch {
	case common.IsCredentialError(err):
		s.log.Warn(ctx, op+" rejected", "email", email, "reason", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Debug(ctx, op+" abandoned", "email", email, "error", err)
	default:
		s.log.Error(ctx, op+" failed", "email", email, "error", err)
	}
}

// burnVerify spends one password check against a throwaway hash.
func (s *Service) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			return
		}
		if h, err := s.hasher.Hash(pw); err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// Register creates an account and signs it in.
//
// The registry is written before the session pointer. If only the pointer
// write fails the account exists but nobody is signed in, and the error is
// returned.
func (s *Service) Register(ctx context.Context, email, username, password string) (*models.UserRecord, error) {
	u, err := s.register(ctx, email, username, password)
	if err != nil {
		s.logFailure(ctx, "register", email, err)
	}
	return u, err
}

func (s *Service) register(ctx context.Context, email, username, password string) (*models.UserRecord, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrInvalidInput)
	}

	ctx, unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	reg, err := s.store.LoadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	// any entry under this key counts, so a malformed one is never overwritten
	if _, exists := reg[email]; exists {
		return nil, fmt.Errorf("%w: %s", common.ErrAlreadyExists, email)
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := s.newID()
	for reg.HasID(id) {
		id = s.newID()
	}

	u := models.UserRecord{ID: id, Email: email, Username: username, PasswordHash: hash}

	next := reg.Clone()
	next[email] = u
	if err := s.store.SaveRegistry(ctx, next); err != nil {
		return nil, err
	}

	if err := s.store.SaveSessionPointer(ctx, &u); err != nil {
		s.log.Warn(ctx, "account created but session not saved", "email", email, "error", err)
		return nil, err
	}

	s.state.Store(models.Authenticated(u))
	s.log.Info(ctx, "registered", "email", email, "scheme", s.hasher.Scheme())
	return &u, nil
}

// Logout signs out and clears the stored pointer, even when already signed
// out. The in-memory State switches first and is not restored if clearing
// the pointer fails.
func (s *Service) Logout(ctx context.Context) error {
	ctx, unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	prev := s.state.Load()
	if prev.LoggedIn() {
		s.state.Store(models.Unauthenticated)
	}

	if err := s.store.SaveSessionPointer(ctx, nil); err != nil {
		s.log.Error(ctx, "signed out in memory but pointer not cleared", "error", err)
		return err
	}

	if prev.LoggedIn() {
		s.log.Info(ctx, "signed out", "email", prev.User.Email)
	}
	return nil
}

func (s *Service) IsLoggedIn() bool {
	return s.state.Load().LoggedIn()
}

// CurrentUser returns a copy of the signed-in account, or nil.
func (s *Service) CurrentUser() *models.UserRecord {
	return s.state.Load().User
}

// Watch subscribes to session changes. See Subscription.
func (s *Service) Watch(ctx context.Context) *Subscription {
	return s.state.Subscribe(ctx)
}

// Close ends all subscriptions. Login, Register and Logout keep working.
func (s *Service) Close() {
	s.state.Close()
}
