package users

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-cacheable/cache"
	"github.com/goliatone/go-cacheable/cacheable"
)

// ClassName identifies the users service operations in the cacheable registry.
const ClassName = "UsersService"

const (
	methodFindAll = "findAll"
	methodFindOne = "findOne"

	listPageSize = 100
)

var (
	// ErrNotFound marks lookups of users that do not exist.
	ErrNotFound = errors.New("users: not found")

	// ErrInvalidInput marks request validation failures.
	ErrInvalidInput = errors.New("users: invalid input")
)

// Cache options for the read operations.
var (
	FindAllOptions = cache.Options{Key: "users:all", TTL: 300 * time.Second}
	FindOneOptions = cache.Options{Key: "user:{0}", TTL: 600 * time.Second}
)

// Service implements the user operations. Reads go through the cache;
// writes invalidate the keys they affect.
type Service struct {
	repo        Repository
	cache       cache.CacheService
	interceptor *cacheable.Interceptor
	logger      *zap.Logger

	findAll func(ctx context.Context, args ...any) ([]*User, error)
	findOne func(ctx context.Context, id string) (*User, error)
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService registers the cacheable read operations on interceptor and
// returns the service. cacheService must be the one interceptor writes to.
func NewService(repo Repository, cacheService cache.CacheService, interceptor *cacheable.Interceptor, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		cache:       cacheService,
		interceptor: interceptor,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.findAll = cacheable.Func(interceptor, ClassName, methodFindAll, FindAllOptions, s.list)
	s.findOne = cacheable.Func1(interceptor, ClassName, methodFindOne, FindOneOptions, s.get)
	return s
}

// FindAll returns every user, oldest first.
func (s *Service) FindAll(ctx context.Context) ([]*User, error) {
	return s.findAll(ctx)
}

// FindOne returns the user with the given id.
func (s *Service) FindOne(ctx context.Context, id string) (*User, error) {
	if err := validateID(id); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "id"), ErrInvalidInput)
	}
	return s.findOne(ctx, id)
}

// Create stores a new user and drops the list entry.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Mark(err, ErrInvalidInput)
	}

	record := &User{
		ID:    uuid.New(),
		Email: strings.TrimSpace(req.Email),
		Name:  strings.TrimSpace(req.Name),
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	s.invalidate(ctx)
	s.logger.Info("user created", zap.String("id", created.ID.String()))
	return created, nil
}

// Update applies req to the user with the given id and drops its entries.
func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	if err := validateID(id); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "id"), ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, errors.Mark(err, ErrInvalidInput)
	}

	// read from the repository, cached records may be shared
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(current)

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return nil, errors.Wrapf(err, "update user %s", id)
	}

	s.invalidate(ctx, id)
	s.logger.Info("user updated", zap.String("id", id))
	return updated, nil
}

// Remove deletes the user with the given id and drops its entries.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return errors.Mark(errors.Wrap(err, "id"), ErrInvalidInput)
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current); err != nil {
		return errors.Wrapf(err, "delete user %s", id)
	}

	s.invalidate(ctx, id)
	s.logger.Info("user removed", zap.String("id", id))
	return nil
}

// invalidate deletes the list entry and the entries of ids.
func (s *Service) invalidate(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if key, ok := s.interceptor.Key(cacheable.Invocation{Class: ClassName, Method: methodFindOne, Args: []any{id}}); ok {
			keys = append(keys, key)
		}
	}
	if key, ok := s.interceptor.Key(cacheable.Invocation{Class: ClassName, Method: methodFindAll}); ok {
		keys = append(keys, key)
	}

	for _, key := range keys {
		s.cache.Del(ctx, key)
	}
	s.logger.Debug("cache keys invalidated", zap.Strings("keys", keys))
}

// list pages through the repository; List caps unpaginated queries.
func (s *Service) list(ctx context.Context, _ ...any) ([]*User, error) {
	var records []*User
	for offset := 0; ; offset += listPageSize {
		page, total, err := s.repo.List(ctx, orderByCreated, repository.SelectPaginate(listPageSize, offset))
		if err != nil {
			return nil, errors.Wrap(err, "list users")
		}
		records = append(records, page...)
		if len(page) < listPageSize || len(records) >= total {
			break
		}
	}
	if records == nil {
		records = []*User{}
	}
	return records, nil
}

func (s *Service) get(ctx context.Context, id string) (*User, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "user %s", id)
		}
		return nil, errors.Wrapf(err, "get user %s", id)
	}
	return record, nil
}
