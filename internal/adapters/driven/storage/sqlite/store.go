package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/archivemed/dedup-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
	"github.com/archivemed/dedup-cli/internal/fingerprint"
)

// timeLayout is a fixed-width RFC3339 variant. Unlike time.RFC3339Nano it
// never trims trailing zeros, so stored timestamps order lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.meddedup/data/dedup.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".meddedup", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "dedup.db")

	// WAL for concurrency, immediate transactions so read-then-write
	// sections like ClaimContentHash serialise at BEGIN.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// PageStore returns a PageStore interface backed by this store.
func (s *Store) PageStore() driven.PageStore {
	return &pageStore{store: s}
}

// VectorStore returns a VectorStore interface backed by this store.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// DuplicateStore returns a DuplicateStore interface backed by this store.
func (s *Store) DuplicateStore() driven.DuplicateStore {
	return &duplicateStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	var signature interface{}
	if len(doc.MinHash) > 0 {
		signature = fingerprint.Signature(doc.MinHash).Encode()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, status, content, content_hash, signature,
			cluster_label, matched_doc_id, similarity, error_stage, page_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			status = excluded.status,
			content = excluded.content,
			content_hash = excluded.content_hash,
			signature = excluded.signature,
			cluster_label = excluded.cluster_label,
			matched_doc_id = excluded.matched_doc_id,
			similarity = excluded.similarity,
			error_stage = excluded.error_stage,
			page_count = excluded.page_count,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Filename, doc.Status.String(), doc.Content, nullString(doc.ContentHash),
		signature, doc.ClusterLabel, nullString(doc.MatchedDocID), doc.Similarity,
		doc.ErrorStage, doc.PageCount,
		doc.CreatedAt.Format(timeLayout), doc.UpdatedAt.Format(timeLayout))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

const documentColumns = `id, filename, status, content, content_hash, signature,
	cluster_label, matched_doc_id, similarity, error_stage, page_count, created_at, updated_at`

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row.Scan)
}

// GetByContentHash retrieves the document holding a content hash.
func (s *documentStore) GetByContentHash(ctx context.Context, hash string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE content_hash = ?`, hash)
	return scanDocument(row.Scan)
}

// ClaimContentHash atomically records a content hash for a document.
// The transaction begins IMMEDIATE (see the store DSN), so the check and
// the update cannot interleave with a concurrent claim.
func (s *documentStore) ClaimContentHash(ctx context.Context, documentID, hash string) (*domain.Document, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	row := tx.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE content_hash = ? AND id <> ?`,
		hash, documentID)
	holder, err := scanDocument(row.Scan)
	if err == nil {
		return holder, domain.ErrAlreadyExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET content_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC().Format(timeLayout), documentID)
	if err != nil {
		return nil, fmt.Errorf("claiming content hash: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claiming content hash: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return nil, nil
}

// ListDocuments returns all documents, optionally filtered by status.
func (s *documentStore) ListDocuments(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status.String())
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// ListRetainedContent returns ID and content for documents with retained text.
func (s *documentStore) ListRetainedContent(ctx context.Context) ([]domain.DocumentContent, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, content FROM documents WHERE content <> '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying retained content: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentContent //nolint:prealloc // size unknown from query
	for rows.Next() {
		var dc domain.DocumentContent
		if err := rows.Scan(&dc.ID, &dc.Content); err != nil {
			return nil, fmt.Errorf("scanning retained content: %w", err)
		}
		out = append(out, dc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating retained content: %w", err)
	}
	return out, nil
}

// ListSignatures returns all stored MinHash signatures.
func (s *documentStore) ListSignatures(ctx context.Context) ([]driven.SignatureEntry, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, signature FROM documents WHERE signature IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}
	defer rows.Close()

	var out []driven.SignatureEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning signature: %w", err)
		}
		sig, err := fingerprint.DecodeSignature(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding signature for %s: %w", id, err)
		}
		out = append(out, driven.SignatureEntry{DocumentID: id, Signature: sig})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signatures: %w", err)
	}
	return out, nil
}

// DeleteDocument removes a document, its pages (via cascade), vectors and
// duplicate edges.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM page_duplicates
		WHERE source_page_id IN (SELECT id FROM pages WHERE document_id = ?)
		   OR duplicate_page_id IN (SELECT id FROM pages WHERE document_id = ?)
	`, id, id); err != nil {
		return fmt.Errorf("deleting page duplicate edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_duplicates WHERE source_id = ? OR duplicate_id = ?`, id, id); err != nil {
		return fmt.Errorf("deleting document duplicate edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vectors
		WHERE owner_id = ?
		   OR owner_id IN (SELECT id FROM pages WHERE document_id = ?)
	`, id, id); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

// CountByStatus returns document counts keyed by status.
func (s *documentStore) CountByStatus(ctx context.Context) (map[domain.DocumentStatus]int, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DocumentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.DocumentStatus(status)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// scanDocument scans a document row via the given scan function.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var contentHash, matchedDocID sql.NullString
	var signature []byte
	var createdAt, updatedAt string

	if err := scan(&doc.ID, &doc.Filename, &status, &doc.Content, &contentHash,
		&signature, &doc.ClusterLabel, &matchedDocID, &doc.Similarity,
		&doc.ErrorStage, &doc.PageCount, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	doc.ContentHash = contentHash.String
	doc.MatchedDocID = matchedDocID.String
	if len(signature) > 0 {
		sig, err := fingerprint.DecodeSignature(signature)
		if err != nil {
			return nil, fmt.Errorf("decoding signature: %w", err)
		}
		doc.MinHash = sig
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(timeLayout, updatedAt); err == nil {
		doc.UpdatedAt = t
	}

	return &doc, nil
}

// ==================== Page Store ====================

// pageStore implements driven.PageStore.
type pageStore struct {
	store *Store
}

var _ driven.PageStore = (*pageStore)(nil)

const pageColumns = `id, document_id, page_number, hash, text_snippet,
	medical_confidence, status, review_note, reviewer, created_at, reviewed_at`

// SavePage stores or updates a page.
func (s *pageStore) SavePage(ctx context.Context, page *domain.Page) error {
	if page == nil || page.ID == "" {
		return domain.ErrInvalidInput
	}

	if page.CreatedAt.IsZero() {
		page.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO pages (id, document_id, page_number, hash, text_snippet,
			medical_confidence, status, review_note, reviewer, created_at, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, page_number) DO UPDATE SET
			hash = excluded.hash,
			text_snippet = excluded.text_snippet,
			medical_confidence = excluded.medical_confidence,
			status = excluded.status,
			review_note = excluded.review_note,
			reviewer = excluded.reviewer,
			reviewed_at = excluded.reviewed_at
	`, page.ID, page.DocumentID, page.PageNumber, page.Hash, page.TextSnippet,
		page.MedicalConfidence, string(page.Status), page.ReviewNote, page.Reviewer,
		page.CreatedAt.Format(timeLayout), formatNullableTime(page.ReviewedAt))

	if err != nil {
		return fmt.Errorf("saving page: %w", err)
	}
	return nil
}

// GetPage retrieves a page by ID.
func (s *pageStore) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	return scanPage(row.Scan)
}

// GetFirstByHash returns the earliest-created page with the hash,
// excluding the page itself.
func (s *pageStore) GetFirstByHash(ctx context.Context, hash, excludePageID string) (*domain.Page, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE hash = ? AND id <> ?
		ORDER BY created_at, id LIMIT 1
	`, hash, excludePageID)
	return scanPage(row.Scan)
}

// ListByHash returns every page carrying the hash, ordered by creation time.
func (s *pageStore) ListByHash(ctx context.Context, hash string) ([]domain.Page, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE hash = ? ORDER BY created_at, id`, hash)
	if err != nil {
		return nil, fmt.Errorf("querying pages by hash: %w", err)
	}
	return collectPages(rows)
}

// ListByDocument returns a document's pages ordered by page number.
func (s *pageStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Page, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE document_id = ? ORDER BY page_number`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying pages by document: %w", err)
	}
	return collectPages(rows)
}

// UpdateReview records a page's review status, reviewer and note.
func (s *pageStore) UpdateReview(ctx context.Context, pageID string, status domain.PageStatus, reviewer, note string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE pages SET status = ?, reviewer = ?, review_note = ?, reviewed_at = ?
		WHERE id = ?
	`, string(status), reviewer, note, time.Now().UTC().Format(timeLayout), pageID)
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// collectPages drains rows into a page slice.
func collectPages(rows *sql.Rows) ([]domain.Page, error) {
	defer rows.Close()

	var pages []domain.Page //nolint:prealloc // size unknown from query
	for rows.Next() {
		page, err := scanPage(rows.Scan)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}
	return pages, nil
}

// scanPage scans a page row via the given scan function.
func scanPage(scan func(dest ...any) error) (*domain.Page, error) {
	var page domain.Page
	var status string
	var createdAt string
	var reviewedAt sql.NullString

	if err := scan(&page.ID, &page.DocumentID, &page.PageNumber, &page.Hash,
		&page.TextSnippet, &page.MedicalConfidence, &status, &page.ReviewNote,
		&page.Reviewer, &createdAt, &reviewedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning page: %w", err)
	}

	page.Status = domain.PageStatus(status)
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		page.CreatedAt = t
	}
	page.ReviewedAt = parseNullableTime(reviewedAt)

	return &page, nil
}

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Put stores or replaces the vector for an owner.
func (s *vectorStore) Put(ctx context.Context, vec *domain.StoredVector) error {
	if vec == nil || vec.OwnerID == "" {
		return domain.ErrInvalidInput
	}

	payload, err := json.Marshal(vec.Vector)
	if err != nil {
		return fmt.Errorf("marshalling vector: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO vectors (owner_id, kind, version, vector)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, kind) DO UPDATE SET
			version = excluded.version,
			vector = excluded.vector
	`, vec.OwnerID, string(vec.Kind), vec.Version, string(payload))

	if err != nil {
		return fmt.Errorf("saving vector: %w", err)
	}
	return nil
}

// Get retrieves the vector for an owner.
func (s *vectorStore) Get(ctx context.Context, ownerID string, kind domain.VectorKind) (*domain.StoredVector, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT owner_id, kind, version, vector FROM vectors WHERE owner_id = ? AND kind = ?`,
		ownerID, string(kind))
	return scanVector(row.Scan)
}

// ListByVersion returns all vectors of a kind and version, ordered by owner.
func (s *vectorStore) ListByVersion(ctx context.Context, kind domain.VectorKind, version int) ([]domain.StoredVector, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT owner_id, kind, version, vector FROM vectors
		WHERE kind = ? AND version = ? ORDER BY owner_id
	`, string(kind), version)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredVector //nolint:prealloc // size unknown from query
	for rows.Next() {
		vec, err := scanVector(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *vec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return out, nil
}

// DeleteByOwner removes all vectors belonging to an owner.
func (s *vectorStore) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM vectors WHERE owner_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// scanVector scans a vector row via the given scan function.
func scanVector(scan func(dest ...any) error) (*domain.StoredVector, error) {
	var vec domain.StoredVector
	var kind, payload string

	if err := scan(&vec.OwnerID, &kind, &vec.Version, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning vector: %w", err)
	}

	vec.Kind = domain.VectorKind(kind)
	if err := json.Unmarshal([]byte(payload), &vec.Vector); err != nil {
		return nil, fmt.Errorf("unmarshaling vector: %w", err)
	}
	return &vec, nil
}

// ==================== Duplicate Store ====================

// duplicateStore implements driven.DuplicateStore.
type duplicateStore struct {
	store *Store
}

var _ driven.DuplicateStore = (*duplicateStore)(nil)

// SaveDocumentDuplicate records a document-level duplicate edge.
// Re-inserting an existing edge is a no-op.
func (s *duplicateStore) SaveDocumentDuplicate(ctx context.Context, rel *domain.DuplicateRelationship) error {
	if rel == nil || rel.SourceID == "" || rel.DuplicateID == "" {
		return domain.ErrInvalidInput
	}

	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO document_duplicates (source_id, duplicate_id, similarity, method, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, duplicate_id) DO NOTHING
	`, rel.SourceID, rel.DuplicateID, rel.Similarity, rel.Method.String(),
		rel.CreatedAt.Format(timeLayout))

	if err != nil {
		return fmt.Errorf("saving duplicate edge: %w", err)
	}
	return nil
}

// ListDocumentDuplicates returns all edges touching a document.
func (s *duplicateStore) ListDocumentDuplicates(ctx context.Context, documentID string) ([]domain.DuplicateRelationship, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_id, duplicate_id, similarity, method, created_at
		FROM document_duplicates
		WHERE source_id = ? OR duplicate_id = ?
		ORDER BY created_at
	`, documentID, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying duplicate edges: %w", err)
	}
	defer rows.Close()

	var out []domain.DuplicateRelationship //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rel domain.DuplicateRelationship
		var method, createdAt string
		if err := rows.Scan(&rel.SourceID, &rel.DuplicateID, &rel.Similarity,
			&method, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning duplicate edge: %w", err)
		}
		rel.Method = domain.DetectionMethod(method)
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			rel.CreatedAt = t
		}
		out = append(out, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate edges: %w", err)
	}
	return out, nil
}

// SavePageDuplicate records a page-level duplicate edge.
func (s *duplicateStore) SavePageDuplicate(ctx context.Context, rel *domain.PageDuplicate) error {
	if rel == nil || rel.SourcePageID == "" || rel.DuplicatePageID == "" {
		return domain.ErrInvalidInput
	}

	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO page_duplicates (source_page_id, duplicate_page_id, similarity, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_page_id, duplicate_page_id) DO NOTHING
	`, rel.SourcePageID, rel.DuplicatePageID, rel.Similarity,
		rel.CreatedAt.Format(timeLayout))

	if err != nil {
		return fmt.Errorf("saving page duplicate edge: %w", err)
	}
	return nil
}

// ListPageDuplicates returns edges where the page is the source.
func (s *duplicateStore) ListPageDuplicates(ctx context.Context, sourcePageID string) ([]domain.PageDuplicate, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_page_id, duplicate_page_id, similarity, created_at
		FROM page_duplicates
		WHERE source_page_id = ?
		ORDER BY created_at
	`, sourcePageID)
	if err != nil {
		return nil, fmt.Errorf("querying page duplicate edges: %w", err)
	}
	defer rows.Close()

	var out []domain.PageDuplicate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rel domain.PageDuplicate
		var createdAt string
		if err := rows.Scan(&rel.SourcePageID, &rel.DuplicatePageID,
			&rel.Similarity, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning page duplicate edge: %w", err)
		}
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			rel.CreatedAt = t
		}
		out = append(out, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating page duplicate edges: %w", err)
	}
	return out, nil
}
