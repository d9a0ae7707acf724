package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/aclarador/internal"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- pass_cache stores serialized pipeline results keyed by text and capability set
	CREATE TABLE IF NOT EXISTS pass_cache (
		cache_key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		hits INTEGER DEFAULT 0,
		invalidated BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT,
		mode TEXT NOT NULL,
		language TEXT,
		original_text TEXT NOT NULL,
		final_text TEXT NOT NULL,
		passes INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		stop_reason TEXT NOT NULL,
		initial_quality REAL,
		final_quality REAL,
		report BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- glossary stores plain-language substitutions applied by the glossary capability
	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		lang TEXT NOT NULL,
		term TEXT NOT NULL,
		replacement TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(lang, term)
	);

	CREATE INDEX IF NOT EXISTS idx_cache_expiry ON pass_cache(expires_at);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_glossary_lookup ON glossary(lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get returns a live cache value. Expired and invalidated entries are
// reported as misses.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var invalidated bool
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT value, invalidated, expires_at FROM pass_cache WHERE cache_key = ?`,
		key).Scan(&value, &invalidated, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if invalidated || (expiresAt.Valid && !s.now().Before(expiresAt.Time)) {
		return nil, false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE pass_cache SET hits = hits + 1, last_used = ? WHERE cache_key = ?`,
		s.now(), key)

	return value, true, err
}

// Put stores value under key. A ttl of zero or less never expires.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: s.now().Add(ttl), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pass_cache (cache_key, value, hits, invalidated, expires_at, last_used, created_at) VALUES (?, ?, 0, FALSE, ?, ?, ?)`,
		key, value, expiresAt, s.now(), s.now())
	return err
}

// CacheEntry is a row from the pass_cache table.
type CacheEntry struct {
	Key         string
	Size        int
	Hits        int
	Invalidated bool
	ExpiresAt   *time.Time
	LastUsed    time.Time
}

// CacheStats summarises pass cache usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	ExpiredEntries int
	InvalidEntries int
	TotalHits      int
}

var (
	// ErrNotFound is returned when no cache entry matches a key.
	ErrNotFound = errors.New("cache entry not found")
	// ErrAmbiguousKey is returned when a key prefix matches several entries.
	ErrAmbiguousKey = errors.New("cache key prefix matches more than one entry")
)

// resolveKey expands a full key or a unique prefix of one, as printed by
// cache list, to the stored key.
func (s *Store) resolveKey(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key FROM pass_cache WHERE substr(cache_key, 1, ?) = ? LIMIT 2`,
		len(prefix), prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return "", err
		}
		if k == prefix {
			return k, nil
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(keys) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return keys[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousKey, prefix)
	}
}

// InvalidateCache keeps the entry but stops serving it. key may be a unique
// prefix; the full key is returned.
func (s *Store) InvalidateCache(ctx context.Context, key string) (string, error) {
	return s.updateByKey(ctx, `UPDATE pass_cache SET invalidated = TRUE WHERE cache_key = ?`, key)
}

// DeleteCache permanently removes a cache entry by key or unique key prefix
// and returns the full key.
func (s *Store) DeleteCache(ctx context.Context, key string) (string, error) {
	return s.updateByKey(ctx, `DELETE FROM pass_cache WHERE cache_key = ?`, key)
}

func (s *Store) updateByKey(ctx context.Context, query, prefix string) (string, error) {
	key, err := s.resolveKey(ctx, prefix)
	if err != nil {
		return "", err
	}
	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return key, nil
}

// ClearCache removes all cache entries.
func (s *Store) ClearCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pass_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeExpired removes entries whose ttl has elapsed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pass_cache WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListCache returns all cache entries ordered by most recently used.
func (s *Store) ListCache(ctx context.Context) ([]CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key, length(value), hits, invalidated, expires_at, last_used FROM pass_cache ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []CacheEntry
	for rows.Next() {
		var e CacheEntry
		var expiresAt sql.NullTime
		if err := rows.Scan(&e.Key, &e.Size, &e.Hits, &e.Invalidated, &expiresAt, &e.LastUsed); err != nil {
			return nil, err
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			e.ExpiresAt = &t
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the pass cache.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}
	now := s.now()

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated AND (expires_at IS NULL OR expires_at > ?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at IS NOT NULL AND expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(hits), 0)
		FROM pass_cache`, now, now).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.ExpiredEntries,
		&stats.InvalidEntries,
		&stats.TotalHits,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SaveRun stores a completed run.
func (s *Store) SaveRun(ctx context.Context, run internal.RunRecord) error {
	ts := run.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, mode, language, original_text, final_text, passes, outcome, stop_reason, initial_quality, final_quality, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Mode, run.Language, run.OriginalText, run.FinalText, run.Passes,
		run.Outcome, run.StopReason, run.InitialQuality, run.FinalQuality, run.Report, ts)
	return err
}

// GetRun retrieves a run by ID, including its serialized report.
func (s *Store) GetRun(ctx context.Context, id string) (*internal.RunRecord, error) {
	var r internal.RunRecord
	var source, language sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, mode, language, original_text, final_text, passes, outcome, stop_reason, initial_quality, final_quality, report, created_at
		 FROM runs WHERE id = ?`, id).Scan(
		&r.ID, &source, &r.Mode, &language, &r.OriginalText, &r.FinalText, &r.Passes,
		&r.Outcome, &r.StopReason, &r.InitialQuality, &r.FinalQuality, &r.Report, &r.Timestamp)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	r.Source, r.Language = source.String, language.String
	return &r, nil
}

// ListRuns returns the most recent runs without their report bodies.
// A limit of zero or less returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error) {
	query := `SELECT id, source, mode, language, passes, outcome, stop_reason, initial_quality, final_quality, created_at
		FROM runs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []internal.RunRecord
	for rows.Next() {
		var r internal.RunRecord
		var source, language sql.NullString
		if err := rows.Scan(&r.ID, &source, &r.Mode, &language, &r.Passes, &r.Outcome, &r.StopReason,
			&r.InitialQuality, &r.FinalQuality, &r.Timestamp); err != nil {
			return nil, err
		}
		r.Source, r.Language = source.String, language.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent term comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// GlossaryEntry represents a row in the glossary table.
type GlossaryEntry struct {
	ID          string
	Lang        string
	Term        string
	Replacement string
	CreatedAt   time.Time
}

// AddGlossaryTerm inserts or replaces a glossary entry. Terms are stored
// lowercased.
func (s *Store) AddGlossaryTerm(ctx context.Context, lang, term, replacement string) error {
	term = strings.ToLower(normalizeText(term))
	if term == "" {
		return fmt.Errorf("glossary term cannot be empty")
	}
	id := "gl_" + uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary (id, lang, term, replacement)
		 VALUES (?, ?, ?, ?)`,
		id, lang, term, normalizeText(replacement))
	return err
}

// GetGlossaryTerms returns all glossary terms for a language as a
// term → replacement map.
func (s *Store) GetGlossaryTerms(ctx context.Context, lang string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term, replacement FROM glossary WHERE lang = ?`, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make(map[string]string)
	for rows.Next() {
		var term, repl string
		if err := rows.Scan(&term, &repl); err != nil {
			return nil, err
		}
		terms[term] = repl
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns all glossary entries, optionally filtered by
// language (pass an empty string to return everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, lang string) ([]GlossaryEntry, error) {
	query := `SELECT id, lang, term, replacement, created_at FROM glossary`
	var args []interface{}
	if lang != "" {
		query += ` WHERE lang = ?`
		args = append(args, lang)
	}
	query += ` ORDER BY lang, term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlossaryEntry
	for rows.Next() {
		var e GlossaryEntry
		if err := rows.Scan(&e.ID, &e.Lang, &e.Term, &e.Replacement, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	return err
}
