package models

import (
	"time"

	"github.com/welldanyogia/webrana-uploadable/internal/files"
)

// Document is an uploadable entity: a titled file with an optional
// thumbnail image. The file properties are not persisted; only the
// stored filenames are.
type Document struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null;size:255" json:"title"`
	Slug     string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Category string `gorm:"size:100;index" json:"category"`

	File     files.File `gorm:"-" json:"-" upload:"mapping=document_file,filename=FileName"`
	FileName string     `gorm:"size:255" json:"file_name"`

	Thumbnail     files.File `gorm:"-" json:"-" upload:"mapping=document_thumbnail,filename=ThumbnailName"`
	ThumbnailName string     `gorm:"size:255" json:"thumbnail_name,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Document
func (Document) TableName() string {
	return "documents"
}
