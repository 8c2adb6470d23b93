package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/webrana-uploadable/internal/models"
	"gorm.io/gorm"
)

// DocumentRepository defines the interface for document data access.
// File storage is driven by the uploadable gorm plugin when it is
// registered on the connection.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	GetBySlug(ctx context.Context, slug string) (*models.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uint) error
}

// DocumentFilter narrows a document listing
type DocumentFilter struct {
	Category string
	Limit    int
	Offset   int
}

// documentRepository implements DocumentRepository using GORM
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository instance
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create creates a new document and stores its pending files
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	result := r.db.WithContext(ctx).Create(doc)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("document with slug '%s' already exists: %w", doc.Slug, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create document: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a document by its ID
func (r *documentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	result := r.db.WithContext(ctx).First(&doc, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document by ID: %w", result.Error)
	}
	return &doc, nil
}

// GetBySlug retrieves a document by its slug
func (r *documentRepository) GetBySlug(ctx context.Context, slug string) (*models.Document, error) {
	var doc models.Document
	result := r.db.WithContext(ctx).Where("slug = ?", slug).First(&doc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document by slug: %w", result.Error)
	}
	return &doc, nil
}

// List retrieves documents newest first, with the total count matching
// the filter
func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	var docs []models.Document
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, total, nil
}

// Update saves an existing document. A pending file replaces the stored one.
func (r *documentRepository) Update(ctx context.Context, doc *models.Document) error {
	result := r.db.WithContext(ctx).Save(doc)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("document with slug '%s' already exists: %w", doc.Slug, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a document by its ID. The document is loaded first so
// the delete callbacks see its stored filenames.
func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(doc)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
