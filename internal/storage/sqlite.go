package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/repoctx/repoctx/pkg/types"
)

// SQLiteStore implements the ChunkStore interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite chunk store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Project operations

func (s *SQLiteStore) CreateProject(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (root_path, name, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		project.RootPath, project.Name, project.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	query := `
		SELECT id, root_path, name, total_files, total_chunks,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		WHERE root_path = ?
	`
	return s.scanProject(s.db.QueryRowContext(ctx, query, rootPath))
}

func (s *SQLiteStore) GetProjectByID(ctx context.Context, projectID int64) (*Project, error) {
	query := `
		SELECT id, root_path, name, total_files, total_chunks,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	return s.scanProject(s.db.QueryRowContext(ctx, query, projectID))
}

func (s *SQLiteStore) scanProject(row *sql.Row) (*Project, error) {
	var project Project
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&project.ID, &project.RootPath, &project.Name,
		&project.TotalFiles, &project.TotalChunks, &project.IndexVersion,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET name = ?, total_files = ?, total_chunks = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		project.Name, project.TotalFiles, project.TotalChunks,
		project.LastIndexedAt, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	project.UpdatedAt = now
	return nil
}

// Chunk operations

const chunkColumns = `id, project_id, file_path, chunk_type, identifier,
	content, content_hash, language, start_line, end_line, embedding`

func (s *SQLiteStore) FindChunk(ctx context.Context, projectID int64, key types.ChunkKey) (*types.CodeChunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE project_id = ? AND file_path = ? AND chunk_type = ? AND identifier = ?
	`
	rows, err := s.db.QueryContext(ctx, query, projectID, key.FilePath, string(key.ChunkType), key.Identifier)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanChunk(rows)
}

func (s *SQLiteStore) GetChunk(ctx context.Context, chunkID int64) (*types.CodeChunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE id = ?
	`
	rows, err := s.db.QueryContext(ctx, query, chunkID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanChunk(rows)
}

// UpsertChunk inserts a chunk or replaces the stored state for its identity
// key. The embedding column is written from the chunk's Embedding field, so
// an update with a nil Embedding clears any previously stored vector.
func (s *SQLiteStore) UpsertChunk(ctx context.Context, chunk *types.CodeChunk) error {
	query := `
		INSERT INTO chunks (project_id, file_path, chunk_type, identifier,
			content, content_hash, language, start_line, end_line,
			embedding, embedding_dim, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path, chunk_type, identifier) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			language = excluded.language,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			embedding = excluded.embedding,
			embedding_dim = excluded.embedding_dim,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()

	var embedding []byte
	var dim sql.NullInt64
	if chunk.Embedding != nil {
		embedding = serializeVector(chunk.Embedding)
		dim = sql.NullInt64{Int64: int64(len(chunk.Embedding)), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		chunk.ProjectID, chunk.FilePath, string(chunk.ChunkType), chunk.Identifier,
		chunk.Content, chunk.ContentHash[:], string(chunk.Language),
		chunk.StartLine, chunk.EndLine, embedding, dim, now, now).Scan(&chunk.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListChunks(ctx context.Context, projectID int64) ([]*types.CodeChunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE project_id = ?
		ORDER BY file_path, start_line
	`
	return s.queryChunks(ctx, query, projectID)
}

// DeleteUnvisited prunes every chunk of the project whose identity key is
// absent from visited. Called only after a walk completes, so a run that
// fails partway never deletes chunks it did not get to revisit.
func (s *SQLiteStore) DeleteUnvisited(ctx context.Context, projectID int64, visited map[types.ChunkKey]struct{}) (int, error) {
	query := `
		SELECT id, file_path, chunk_type, identifier
		FROM chunks
		WHERE project_id = ?
	`
	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var stale []int64
	for rows.Next() {
		var id int64
		var key types.ChunkKey
		var chunkType string
		if err := rows.Scan(&id, &key.FilePath, &chunkType, &key.Identifier); err != nil {
			return 0, fmt.Errorf("failed to scan chunk key: %w", err)
		}
		key.ChunkType = types.ChunkType(chunkType)
		if _, ok := visited[key]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	// Delete in batches to stay under SQLite's parameter limit
	const batchSize = 500
	for i := 0; i < len(stale); i += batchSize {
		end := i + batchSize
		if end > len(stale) {
			end = len(stale)
		}
		batch := stale[i:end]

		placeholders := strings.Repeat("?,", len(batch))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]interface{}, len(batch))
		for j, id := range batch {
			args[j] = id
		}

		result, err := s.db.ExecContext(ctx,
			"DELETE FROM chunks WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete stale chunks: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}

	return deleted, nil
}

// Embedding operations

func (s *SQLiteStore) SetEmbedding(ctx context.Context, chunkID int64, vector []float32) error {
	var embedding []byte
	var dim sql.NullInt64
	if vector != nil {
		embedding = serializeVector(vector)
		dim = sql.NullInt64{Int64: int64(len(vector)), Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE chunks SET embedding = ?, embedding_dim = ?, updated_at = ? WHERE id = ?",
		embedding, dim, time.Now(), chunkID)
	if err != nil {
		return fmt.Errorf("failed to set embedding: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) HasAnyEmbedding(ctx context.Context, projectID int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM chunks WHERE project_id = ? AND embedding IS NOT NULL)",
		projectID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// Status operations

func (s *SQLiteStore) CountChunks(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE project_id = ?", projectID).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountEmbedded(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE project_id = ? AND embedding IS NOT NULL",
		projectID).Scan(&count)
	return count, err
}

// Search operations

// SearchText matches any token as a case-insensitive substring of content,
// file path, or identifier. Results carry no relevance score and are ordered
// by (file_path, start_line).
func (s *SQLiteStore) SearchText(ctx context.Context, projectID int64, tokens []string, limit int) ([]*types.CodeChunk, error) {
	if len(tokens) == 0 || limit <= 0 {
		return []*types.CodeChunk{}, nil
	}

	var conditions []string
	args := []interface{}{projectID}
	for _, token := range tokens {
		pattern := "%" + escapeLike(strings.ToLower(token)) + "%"
		conditions = append(conditions,
			`(LOWER(content) LIKE ? ESCAPE '\' OR LOWER(file_path) LIKE ? ESCAPE '\' OR LOWER(identifier) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE project_id = ? AND (` + strings.Join(conditions, " OR ") + `)
		ORDER BY file_path, start_line
		LIMIT ?
	`
	args = append(args, limit)

	return s.queryChunks(ctx, query, args...)
}

func (s *SQLiteStore) queryChunks(ctx context.Context, query string, args ...interface{}) ([]*types.CodeChunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*types.CodeChunk, 0)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// scanChunk reads one chunk row. The row must select chunkColumns in order.
func scanChunk(rows *sql.Rows) (*types.CodeChunk, error) {
	var chunk types.CodeChunk
	var chunkType, lang string
	var hash, embedding []byte
	err := rows.Scan(
		&chunk.ID, &chunk.ProjectID, &chunk.FilePath, &chunkType, &chunk.Identifier,
		&chunk.Content, &hash, &lang, &chunk.StartLine, &chunk.EndLine, &embedding,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunk: %w", err)
	}
	chunk.ChunkType = types.ChunkType(chunkType)
	chunk.Language = types.Language(lang)
	copy(chunk.ContentHash[:], hash)
	if embedding != nil {
		chunk.Embedding = deserializeVector(embedding)
	}
	return &chunk, nil
}

// escapeLike escapes LIKE metacharacters in a search token
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
