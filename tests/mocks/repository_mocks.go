package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-uploadable/internal/models"
	"github.com/welldanyogia/webrana-uploadable/internal/repository"
)

// MockDocumentRepository implements repository.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

// Create creates a new document
func (m *MockDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// GetByID retrieves a document by its ID
func (m *MockDocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

// GetBySlug retrieves a document by its slug
func (m *MockDocumentRepository) GetBySlug(ctx context.Context, slug string) (*models.Document, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

// List retrieves documents matching filter
func (m *MockDocumentRepository) List(ctx context.Context, filter repository.DocumentFilter) ([]models.Document, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Document), args.Get(1).(int64), args.Error(2)
}

// Update updates an existing document
func (m *MockDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// Delete deletes a document by its ID
func (m *MockDocumentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
