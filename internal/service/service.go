package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/apidemo/internal/logger"
	"github.com/patric-chuzhbe/apidemo/internal/models"
	"github.com/patric-chuzhbe/apidemo/internal/validation"
)

type usersKeeper interface {
	InsertUser(ctx context.Context, input models.UserInput) (models.User, error)
	FindUserByID(ctx context.Context, id int) (models.User, bool, error)
	FindUserIndexByID(ctx context.Context, id int) (int, bool, error)
	ReplaceUserAt(ctx context.Context, index int, usr models.User) error
}

type productsKeeper interface {
	InsertProduct(ctx context.Context, input models.ProductInput) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	FindProductByID(ctx context.Context, id int) (models.Product, bool, error)
	FindProductIndexByID(ctx context.Context, id int) (int, bool, error)
	ReplaceProductAt(ctx context.Context, index int, product models.Product) error
	RemoveProductAt(ctx context.Context, index int) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	usersKeeper
	productsKeeper
	pinger
}

// Service implements the user and product operations on top of the storage.
type Service struct {
	db    storage
	rules validation.Rules
	now   func() time.Time

	// mu makes every find-then-mutate sequence run alone.
	mu sync.Mutex
}

// Option configures New.
type Option func(*Service)

// WithRules replaces the default validation table.
func WithRules(rules validation.Rules) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

// WithClock replaces time.Now for the v2 greeting.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(db storage, opts ...Option) *Service {
	s := &Service{
		db:    db,
		rules: validation.DefaultRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) check(op models.Operation, payload any, classification error) error {
	if err := s.rules.Check(op, payload); err != nil {
		logger.Log.Debugln("payload rejected", "operation", op, zap.Error(err))
		return fmt.Errorf("%w: %w", classification, err)
	}

	return nil
}

// CreateUser stores a new user built from input without further checks.
func (s *Service) CreateUser(ctx context.Context, input models.UserInput) (models.User, error) {
	if err := s.check(models.OpCreateUser, input, models.ErrInvalidUser); err != nil {
		return models.User{}, err
	}

	return s.db.InsertUser(ctx, input)
}

func (s *Service) GetUser(ctx context.Context, id int) (models.User, error) {
	usr, found, err := s.db.FindUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, fmt.Errorf("%w: id %d", models.ErrUserNotFound, id)
	}

	return usr, nil
}

// UpdateUser overwrites name, email and age with the values from input.
// A field missing from input clears the stored value.
func (s *Service) UpdateUser(ctx context.Context, id int, input models.UserInput) (models.User, error) {
	if err := s.check(models.OpUpdateUser, input, models.ErrInvalidUser); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, found, err := s.db.FindUserIndexByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, fmt.Errorf("%w: id %d", models.ErrUserNotFound, id)
	}

	usr := models.User{
		ID:        id,
		UserInput: input,
	}
	if err := s.db.ReplaceUserAt(ctx, index, usr); err != nil {
		return models.User{}, err
	}

	return usr, nil
}

// CreateProduct validates input with the create-product rule and stores it.
func (s *Service) CreateProduct(ctx context.Context, input models.ProductInput) (models.Product, error) {
	if err := s.check(models.OpCreateProduct, input, models.ErrInvalidProduct); err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.InsertProduct(ctx, input)
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.db.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int) (models.Product, error) {
	product, found, err := s.db.FindProductByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if !found {
		return models.Product{}, fmt.Errorf("%w: id %d", models.ErrProductNotFound, id)
	}

	return product, nil
}

// ReplaceProduct overwrites every field of the product except its id.
// The category is not checked here, only at creation.
func (s *Service) ReplaceProduct(ctx context.Context, id int, input models.ProductInput) (models.Product, error) {
	if err := s.check(models.OpReplaceProduct, input, models.ErrInvalidProduct); err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, found, err := s.db.FindProductIndexByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if !found {
		return models.Product{}, fmt.Errorf("%w: id %d", models.ErrProductNotFound, id)
	}

	product := models.Product{
		ID:           id,
		ProductInput: input,
	}
	if err := s.db.ReplaceProductAt(ctx, index, product); err != nil {
		return models.Product{}, err
	}

	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, found, err := s.db.FindProductIndexByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: id %d", models.ErrProductNotFound, id)
	}

	return s.db.RemoveProductAt(ctx, index)
}

// Hello returns the v1 greeting.
func (s *Service) Hello() models.Hello {
	return models.Hello{Message: "hello world"}
}

// HelloV2 returns the v2 greeting stamped with the current time.
func (s *Service) HelloV2() models.HelloV2 {
	return models.HelloV2{
		Message: "hello world v2",
		Version: "v2",
		Date:    s.now().UTC(),
	}
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
