package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *FileRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026021002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	document_type TEXT NOT NULL DEFAULT 'unknown',
	priority TEXT NOT NULL DEFAULT 'normal',
	confidentiality TEXT NOT NULL DEFAULT 'internal'
);

CREATE TABLE IF NOT EXISTS sources (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	source_type TEXT NOT NULL DEFAULT 'unknown'
);

CREATE TABLE IF NOT EXISTS files (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	file_path TEXT NOT NULL,
	file_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	fingerprint TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	raw_text TEXT,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	user_id BIGINT NOT NULL,
	category_id BIGINT REFERENCES categories(id),
	source_id BIGINT REFERENCES sources(id),
	uploaded_at TIMESTAMPTZ NOT NULL,
	last_modified TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tags (
	file_id BIGINT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	tag_name TEXT NOT NULL,
	tag_type TEXT NOT NULL,
	reason TEXT,
	position INT NOT NULL DEFAULT 0,
	PRIMARY KEY (file_id, tag_name)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_files_user_fingerprint ON files(user_id, fingerprint);
CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);
CREATE INDEX IF NOT EXISTS idx_files_uploaded_at ON files(uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_file_tags_name ON file_tags(tag_name);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *FileRepository) CreateFile(ctx context.Context, rec *domain.FileRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
INSERT INTO files (
	title, file_path, file_type, size_bytes, fingerprint, status, error_message, user_id, category_id, source_id, uploaded_at, last_modified
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`,
		rec.Title, rec.FilePath, rec.FileType, rec.SizeBytes, rec.Fingerprint, string(rec.Status),
		rec.Error, rec.UserID, nullableID(rec.CategoryID), nullableID(rec.SourceID), rec.UploadedAt, rec.ModifiedAt,
	)
	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	if err := insertTags(ctx, tx, rec.ID, rec.Tags, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create tx: %w", err)
	}
	return nil
}

const fileColumns = `
f.id, f.title, f.file_path, f.file_type, f.size_bytes, f.fingerprint, f.status, f.error_message,
f.raw_text, f.fields, f.user_id, f.category_id, f.source_id, f.uploaded_at, f.last_modified,
c.name, c.document_type, c.priority, c.confidentiality,
s.name, s.source_type`

const fileJoins = `
FROM files f
LEFT JOIN categories c ON c.id = f.category_id
LEFT JOIN sources s ON s.id = f.source_id`

func (r *FileRepository) GetFileByHash(ctx context.Context, userID int64, hash string) (*domain.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT`+fileColumns+fileJoins+`
WHERE f.user_id = $1 AND f.fingerprint = $2
`, userID, hash)

	rec, err := scanFile(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *FileRepository) GetFileRecord(ctx context.Context, id int64) (*domain.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT`+fileColumns+fileJoins+`
WHERE f.id = $1
`, id)

	rec, err := scanFile(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *FileRepository) UpdateStatus(ctx context.Context, id int64, status domain.FileStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE files
SET status = $2, error_message = $3, last_modified = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update file status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("file %d: %w", id, domain.ErrRecordNotFound)
	}
	return nil
}

func (r *FileRepository) SaveAnalysis(ctx context.Context, id int64, doc *domain.ParsedDocument, res domain.AnalysisResult) error {
	fieldsJSON, err := json.Marshal(res.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analysis tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
UPDATE files
SET raw_text = $2, fields = $3, last_modified = $4
WHERE id = $1
`, id, doc.RawText, fieldsJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	// Derived tags are recomputed on every run; manual ones stay.
	if _, err := tx.ExecContext(ctx, `
DELETE FROM file_tags
WHERE file_id = $1 AND tag_type <> $2
`, id, string(domain.TagSourceManual)); err != nil {
		return fmt.Errorf("clear derived tags: %w", err)
	}

	var derived []domain.TagLink
	manual := 0
	for _, tag := range res.Tags {
		if tag.Source == domain.TagSourceManual {
			manual++
			continue
		}
		derived = append(derived, domain.TagLink{Name: tag.Name, Type: tag.Source, Reason: tag.Reason})
	}
	if err := insertTags(ctx, tx, id, derived, manual); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis tx: %w", err)
	}
	return nil
}

func (r *FileRepository) ListFiles(ctx context.Context, userID int64, filter domain.Filter) ([]domain.FileRecord, error) {
	query := `
SELECT` + fileColumns + fileJoins + `
WHERE f.user_id = $1`
	args := []any{userID}

	if filter.FileType != "" {
		args = append(args, strings.ToLower(filter.FileType))
		query += fmt.Sprintf(" AND f.file_type = $%d", len(args))
	}
	tagNames := append([]string{}, filter.Tags...)
	if filter.Counterparty != "" {
		tagNames = append(tagNames, filter.Counterparty)
	}
	for _, name := range tagNames {
		args = append(args, name)
		query += fmt.Sprintf(`
 AND EXISTS (SELECT 1 FROM file_tags t WHERE t.file_id = f.id AND t.tag_name = $%d)`, len(args))
	}
	query += `
ORDER BY f.uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []domain.FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	for i := range files {
		if err := r.loadTags(ctx, &files[i]); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (r *FileRepository) ListFileTypes(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, `SELECT DISTINCT file_type FROM files ORDER BY file_type`)
}

func (r *FileRepository) ListTagNames(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, `SELECT DISTINCT tag_name FROM file_tags ORDER BY tag_name`)
}

func (r *FileRepository) ListCounterparties(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, `
SELECT DISTINCT org
FROM files, jsonb_array_elements_text(fields->'organizations') AS org
ORDER BY org`)
}

func (r *FileRepository) listStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}
	return values, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	var status string
	var errMessage, rawText sql.NullString
	var fieldsRaw []byte
	var categoryID, sourceID sql.NullInt64
	var catName, catDocType, catPriority, catConfidentiality sql.NullString
	var srcName, srcType sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Title, &rec.FilePath, &rec.FileType, &rec.SizeBytes, &rec.Fingerprint, &status, &errMessage,
		&rawText, &fieldsRaw, &rec.UserID, &categoryID, &sourceID, &rec.UploadedAt, &rec.ModifiedAt,
		&catName, &catDocType, &catPriority, &catConfidentiality,
		&srcName, &srcType,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}

	rec.Status = domain.FileStatus(status)
	rec.Error = errMessage.String
	rec.RawText = rawText.String
	if len(fieldsRaw) > 0 {
		if err := json.Unmarshal(fieldsRaw, &rec.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	if categoryID.Valid {
		rec.CategoryID = categoryID.Int64
		rec.Category = &domain.Category{
			ID:              categoryID.Int64,
			Name:            catName.String,
			DocumentType:    catDocType.String,
			Priority:        domain.PriorityLevel(catPriority.String),
			Confidentiality: domain.ConfidentialityLevel(catConfidentiality.String),
		}
	}
	if sourceID.Valid {
		rec.SourceID = sourceID.Int64
		rec.Source = &domain.Source{
			ID:   sourceID.Int64,
			Name: srcName.String,
			Type: srcType.String,
		}
	}
	return &rec, nil
}

func (r *FileRepository) loadTags(ctx context.Context, rec *domain.FileRecord) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT tag_name, tag_type, reason
FROM file_tags
WHERE file_id = $1
ORDER BY position, tag_name
`, rec.ID)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	rec.Tags = nil
	for rows.Next() {
		var tag domain.TagLink
		var reason sql.NullString
		if err := rows.Scan(&tag.Name, &tag.Type, &reason); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		tag.Reason = reason.String
		rec.Tags = append(rec.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tags: %w", err)
	}
	return nil
}

func insertTags(ctx context.Context, tx *sql.Tx, fileID int64, tags []domain.TagLink, startPos int) error {
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO file_tags (file_id, tag_name, tag_type, reason, position)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (file_id, tag_name) DO NOTHING
`, fileID, tag.Name, tag.Type, tag.Reason, startPos+i); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
