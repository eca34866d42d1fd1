package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-docsync/internal/identity"
	"github.com/goliatone/go-docsync/pkg/interfaces"
)

var ErrRecordNotFound = errors.New("state: sync record not found")

// NewSyncRecordRepository creates a repository for SyncRecord entities.
func NewSyncRecordRepository(db *bun.DB) repository.Repository[*SyncRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SyncRecord]{
		NewRecord: func() *SyncRecord { return &SyncRecord{} },
		GetID: func(r *SyncRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *SyncRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "source_path"
		},
		GetIdentifierValue: func(r *SyncRecord) string {
			return r.SourcePath
		},
	})
}

// Store is the sync-state persistence layer.
type Store struct {
	repo repository.Repository[*SyncRecord]
	now  func() time.Time
}

// NewStore builds a store over the given bun DB.
func NewStore(db *bun.DB) *Store {
	return &Store{repo: NewSyncRecordRepository(db), now: time.Now}
}

// Migrate creates the backing table when missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*SyncRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("state: create sync_records table: %w", err)
	}
	return nil
}

// GetBySourcePath returns the record for a source path, or ErrRecordNotFound.
func (s *Store) GetBySourcePath(ctx context.Context, sourcePath string) (*SyncRecord, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.source_path = ?", sourcePath)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("state: load sync record for %s: %w", sourcePath, err)
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}
	return records[0], nil
}

// Record upserts the outcome of one conversion for a source path. Record ids
// are derived deterministically from the path so repeated syncs update in
// place.
func (s *Store) Record(ctx context.Context, sourcePath string, handle interfaces.DocumentHandle, title string) (*SyncRecord, error) {
	now := s.now()

	existing, err := s.GetBySourcePath(ctx, sourcePath)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		sourceSlug, _ := slug.Normalize(sourcePath)
		record := &SyncRecord{
			ID:         identity.SyncRecordUUID(sourcePath),
			SourcePath: sourcePath,
			SourceSlug: sourceSlug,
			DocumentID: handle.DocumentID,
			URL:        handle.URL,
			RevisionID: handle.RevisionID,
			Title:      title,
			SyncedAt:   now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created, err := s.repo.Create(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("state: create sync record for %s: %w", sourcePath, err)
		}
		return created, nil
	}

	existing.DocumentID = handle.DocumentID
	existing.URL = handle.URL
	existing.RevisionID = handle.RevisionID
	existing.Title = title
	existing.SyncedAt = now
	existing.UpdatedAt = now

	updated, err := s.repo.Update(ctx, existing,
		repository.UpdateByID(existing.ID.String()),
		repository.UpdateColumns(
			"document_id",
			"url",
			"revision_id",
			"title",
			"synced_at",
			"updated_at",
		),
	)
	if err != nil {
		return nil, fmt.Errorf("state: update sync record for %s: %w", sourcePath, err)
	}
	return updated, nil
}

// Forget removes the record for a source path. Missing records are not an
// error.
func (s *Store) Forget(ctx context.Context, sourcePath string) error {
	record, err := s.GetBySourcePath(ctx, sourcePath)
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, record); err != nil {
		return fmt.Errorf("state: delete sync record for %s: %w", sourcePath, err)
	}
	return nil
}

// Open opens (or creates) the sqlite database at path and prepares the
// schema. Use ":memory:" for throwaway stores.
func Open(ctx context.Context, path string) (*bun.DB, error) {
	dsn := path
	if dsn == ":memory:" {
		dsn = "file::memory:?cache=shared&_fk=1"
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("state: open sqlite at %s: %w", path, err)
	}
	db := bunDB(sqldb)
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
