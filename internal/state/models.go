// Package state persists the mapping from Markdown source paths to the
// documents previously created for them, so repeat conversions can append
// to or replace the existing document instead of always creating a new one.
package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SyncRecord tracks the last known remote document for one source path.
type SyncRecord struct {
	bun.BaseModel `bun:"table:sync_records,alias:sr"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SourcePath string    `bun:"source_path,notnull,unique" json:"source_path"`
	SourceSlug string    `bun:"source_slug,notnull" json:"source_slug"`
	DocumentID string    `bun:"document_id,notnull" json:"document_id"`
	URL        string    `bun:"url" json:"url,omitempty"`
	RevisionID string    `bun:"revision_id" json:"revision_id,omitempty"`
	Title      string    `bun:"title" json:"title,omitempty"`
	SyncedAt   time.Time `bun:"synced_at,nullzero,default:current_timestamp" json:"synced_at"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
