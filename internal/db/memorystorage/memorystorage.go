// Package memorystorage keeps the users and products collections in
// process memory. Each collection is an ordered sequence owned by the
// storage; callers only ever receive copies of the stored records.
package memorystorage

import (
	"context"
	"errors"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/apidemo/internal/models"
)

// ErrIndexOutOfRange is returned by the *At methods for a stale index.
var ErrIndexOutOfRange = errors.New("index out of range")

type collection[T any] struct {
	mu    sync.RWMutex
	items []T
	idOf  func(T) int
}

// findIndexByID expects the caller to hold c.mu.
func (c *collection[T]) findIndexByID(id int) int {
	for i, item := range c.items {
		if c.idOf(item) == id {
			return i
		}
	}

	return -1
}

func (c *collection[T]) inRange(index int) bool {
	return index >= 0 && index < len(c.items)
}

// MemoryStorage owns the users and products collections.
type MemoryStorage struct {
	users    *collection[models.User]
	products *collection[models.Product]

	productIDPolicy models.ProductIDPolicy
	// lastProductID backs ProductIDPolicySequence.
	lastProductID int
}

// InitOption configures New.
type InitOption func(*initOptions)

type initOptions struct {
	productIDPolicy models.ProductIDPolicy
	users           []models.User
	products        []models.Product
}

// WithProductIDPolicy selects how product ids are assigned.
func WithProductIDPolicy(policy models.ProductIDPolicy) InitOption {
	return func(options *initOptions) {
		options.productIDPolicy = policy
	}
}

// WithSeed replaces the default seed records.
func WithSeed(users []models.User, products []models.Product) InitOption {
	return func(options *initOptions) {
		options.users = users
		options.products = products
	}
}

// New builds a storage filled with the seed records.
func New(optionsProto ...InitOption) (*MemoryStorage, error) {
	options := &initOptions{
		productIDPolicy: models.ProductIDPolicyLength,
		users:           seedUsers(),
		products:        seedProducts(),
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	theStorage := &MemoryStorage{
		users: &collection[models.User]{
			items: make([]models.User, 0, len(options.users)),
			idOf:  func(usr models.User) int { return usr.ID },
		},
		products: &collection[models.Product]{
			items: make([]models.Product, 0, len(options.products)),
			idOf:  func(product models.Product) int { return product.ID },
		},
		productIDPolicy: options.productIDPolicy,
	}

	theStorage.users.items = append(theStorage.users.items, options.users...)
	for _, product := range options.products {
		theStorage.products.items = append(theStorage.products.items, product.Clone())
		if product.ID > theStorage.lastProductID {
			theStorage.lastProductID = product.ID
		}
	}

	return theStorage, nil
}

// ProductIDPolicy reports the id policy the storage was built with.
func (theStorage *MemoryStorage) ProductIDPolicy() models.ProductIDPolicy {
	return theStorage.productIDPolicy
}

func (theStorage *MemoryStorage) nextUserID() int {
	if len(theStorage.users.items) == 0 {
		return 1
	}

	ids := funk.Map(theStorage.users.items, func(usr models.User) int {
		return usr.ID
	}).([]int)

	return funk.MaxInt(ids) + 1
}

func (theStorage *MemoryStorage) nextProductID() int {
	if theStorage.productIDPolicy == models.ProductIDPolicySequence {
		theStorage.lastProductID++
		return theStorage.lastProductID
	}

	return len(theStorage.products.items) + 1
}

// InsertUser appends a user with id max(ids)+1, or 1 for an empty collection.
func (theStorage *MemoryStorage) InsertUser(ctx context.Context, input models.UserInput) (models.User, error) {
	theStorage.users.mu.Lock()
	defer theStorage.users.mu.Unlock()

	usr := models.User{
		ID:        theStorage.nextUserID(),
		UserInput: input,
	}
	theStorage.users.items = append(theStorage.users.items, usr)

	return usr, nil
}

func (theStorage *MemoryStorage) FindUserByID(ctx context.Context, id int) (models.User, bool, error) {
	theStorage.users.mu.RLock()
	defer theStorage.users.mu.RUnlock()

	index := theStorage.users.findIndexByID(id)
	if index == -1 {
		return models.User{}, false, nil
	}

	return theStorage.users.items[index], true, nil
}

func (theStorage *MemoryStorage) FindUserIndexByID(ctx context.Context, id int) (int, bool, error) {
	theStorage.users.mu.RLock()
	defer theStorage.users.mu.RUnlock()

	index := theStorage.users.findIndexByID(id)

	return index, index != -1, nil
}

// ReplaceUserAt overwrites every stored field of the user at index.
func (theStorage *MemoryStorage) ReplaceUserAt(ctx context.Context, index int, usr models.User) error {
	theStorage.users.mu.Lock()
	defer theStorage.users.mu.Unlock()

	if !theStorage.users.inRange(index) {
		return ErrIndexOutOfRange
	}
	theStorage.users.items[index] = usr

	return nil
}

// InsertProduct appends a product, assigning its id by the storage policy.
func (theStorage *MemoryStorage) InsertProduct(ctx context.Context, input models.ProductInput) (models.Product, error) {
	theStorage.products.mu.Lock()
	defer theStorage.products.mu.Unlock()

	product := models.Product{
		ID:           theStorage.nextProductID(),
		ProductInput: input,
	}.Clone()
	theStorage.products.items = append(theStorage.products.items, product)

	return product.Clone(), nil
}

// ListProducts returns the products in insertion order.
func (theStorage *MemoryStorage) ListProducts(ctx context.Context) ([]models.Product, error) {
	theStorage.products.mu.RLock()
	defer theStorage.products.mu.RUnlock()

	result := make([]models.Product, 0, len(theStorage.products.items))
	for _, product := range theStorage.products.items {
		result = append(result, product.Clone())
	}

	return result, nil
}

func (theStorage *MemoryStorage) FindProductByID(ctx context.Context, id int) (models.Product, bool, error) {
	theStorage.products.mu.RLock()
	defer theStorage.products.mu.RUnlock()

	index := theStorage.products.findIndexByID(id)
	if index == -1 {
		return models.Product{}, false, nil
	}

	return theStorage.products.items[index].Clone(), true, nil
}

func (theStorage *MemoryStorage) FindProductIndexByID(ctx context.Context, id int) (int, bool, error) {
	theStorage.products.mu.RLock()
	defer theStorage.products.mu.RUnlock()

	index := theStorage.products.findIndexByID(id)

	return index, index != -1, nil
}

// ReplaceProductAt overwrites every stored field of the product at index.
func (theStorage *MemoryStorage) ReplaceProductAt(ctx context.Context, index int, product models.Product) error {
	theStorage.products.mu.Lock()
	defer theStorage.products.mu.Unlock()

	if !theStorage.products.inRange(index) {
		return ErrIndexOutOfRange
	}
	theStorage.products.items[index] = product.Clone()

	return nil
}

// RemoveProductAt deletes the product at index, shifting the following
// products one position to the left. Ids are not regenerated.
func (theStorage *MemoryStorage) RemoveProductAt(ctx context.Context, index int) error {
	theStorage.products.mu.Lock()
	defer theStorage.products.mu.Unlock()

	if !theStorage.products.inRange(index) {
		return ErrIndexOutOfRange
	}
	theStorage.products.items = append(
		theStorage.products.items[:index],
		theStorage.products.items[index+1:]...,
	)

	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
