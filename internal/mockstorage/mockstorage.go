// Package mockstorage provides a testify-based mock implementation
// of the storage interfaces used by the service package.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/apidemo/internal/models"
)

// StorageMock is a testify mock that implements every storage method
// the service calls.
type StorageMock struct {
	mock.Mock
}

func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) InsertUser(ctx context.Context, input models.UserInput) (models.User, error) {
	args := m.Called(ctx, input)
	usr, _ := args.Get(0).(models.User)
	return usr, args.Error(1)
}

func (m *StorageMock) FindUserByID(ctx context.Context, id int) (models.User, bool, error) {
	args := m.Called(ctx, id)
	usr, _ := args.Get(0).(models.User)
	return usr, args.Bool(1), args.Error(2)
}

func (m *StorageMock) FindUserIndexByID(ctx context.Context, id int) (int, bool, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *StorageMock) ReplaceUserAt(ctx context.Context, index int, usr models.User) error {
	args := m.Called(ctx, index, usr)
	return args.Error(0)
}

func (m *StorageMock) InsertProduct(ctx context.Context, input models.ProductInput) (models.Product, error) {
	args := m.Called(ctx, input)
	product, _ := args.Get(0).(models.Product)
	return product, args.Error(1)
}

func (m *StorageMock) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *StorageMock) FindProductByID(ctx context.Context, id int) (models.Product, bool, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(models.Product)
	return product, args.Bool(1), args.Error(2)
}

func (m *StorageMock) FindProductIndexByID(ctx context.Context, id int) (int, bool, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *StorageMock) ReplaceProductAt(ctx context.Context, index int, product models.Product) error {
	args := m.Called(ctx, index, product)
	return args.Error(0)
}

func (m *StorageMock) RemoveProductAt(ctx context.Context, index int) error {
	args := m.Called(ctx, index)
	return args.Error(0)
}
