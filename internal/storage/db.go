package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var (
	// ErrNotFound means the id does not resolve to a live (non-deleted) record.
	ErrNotFound = errors.New("candidate not found")
	// ErrPartialUpdate means one half of a paired update may have been
	// committed while the other failed; the affected records need manual
	// reconciliation.
	ErrPartialUpdate = errors.New("partial update: pair left in indeterminate state")
)

type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

const candidateColumns = `id, dni, first_name, last_name, maternal_last_name, email, phone,
	phone_normalized, name_phonetic, address, zone, status, is_duplicate, duplicate_of,
	dedup_reviewed, dedup_reviewed_at, dedup_reviewed_by, times_hired, last_hired_at,
	last_contacted_at, notes, tags, deleted_at, created_at, updated_at`

// GetCandidate fetches one live candidate by id. Soft-deleted records
// are treated as not found.
func (db *DB) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1 AND deleted_at IS NULL`
	row := db.connection.QueryRowContext(ctx, query, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get candidate %s: %w", id, err)
	}
	return c, nil
}

// ListActivePopulation returns the match population: every candidate
// that is neither soft-deleted nor already demoted to duplicate. The
// ordering (created_at, then id) is deterministic so self-scan runs and
// tie-breaking behave the same across calls.
func (db *DB) ListActivePopulation(ctx context.Context) ([]*Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates
		WHERE deleted_at IS NULL AND is_duplicate = FALSE
		ORDER BY created_at, id`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list population: %w", err)
	}
	defer rows.Close()

	var res []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan population row: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// ListAllLive returns every non-deleted candidate, duplicates included.
// Used for duplicate_of chain checks, where the demoted records matter.
func (db *DB) ListAllLive(ctx context.Context) ([]*Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates
		WHERE deleted_at IS NULL
		ORDER BY created_at, id`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list live candidates: %w", err)
	}
	defer rows.Close()

	var res []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// UpdateCandidate persists every mutable column of the candidate.
func (db *DB) UpdateCandidate(ctx context.Context, c *Candidate) error {
	res, err := db.connection.ExecContext(ctx, updateCandidateQuery, updateCandidateArgs(c)...)
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePair applies a merge's two mutations (primary absorb, secondary
// demotion) inside one transaction so a merge is never half-applied.
func (db *DB) UpdatePair(ctx context.Context, primary, secondary *Candidate) error {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}

	for _, c := range []*Candidate{primary, secondary} {
		res, err := tx.ExecContext(ctx, updateCandidateQuery, updateCandidateArgs(c)...)
		if err == nil {
			var n int64
			if n, err = res.RowsAffected(); err == nil && n == 0 {
				err = ErrNotFound
			}
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("update candidate %s failed (%v), rollback also failed: %w", c.ID, err, rbErr)
			}
			return fmt.Errorf("update candidate %s: %w", c.ID, err)
		}
	}

	// A failed commit is the indeterminate case: the server may or may
	// not have applied the pair, so it is classified as a partial update
	// and the records need manual reconciliation.
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit of merge %s/%s failed: %v",
			ErrPartialUpdate, primary.ID, secondary.ID, err)
	}
	return nil
}

// MarkDuplicate is the self-scan apply path: demote a record under the
// given primary without touching any other column. The is_duplicate
// guard rejects records another run (or operator) already resolved.
func (db *DB) MarkDuplicate(ctx context.Context, id, primaryID, reviewedBy string) error {
	query := `UPDATE candidates
		SET is_duplicate = TRUE, duplicate_of = $2, status = $3,
			dedup_reviewed = TRUE, dedup_reviewed_at = NOW(), dedup_reviewed_by = $4,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND is_duplicate = FALSE`
	res, err := db.connection.ExecContext(ctx, query, id, primaryID, StatusInactive, reviewedBy)
	if err != nil {
		return fmt.Errorf("mark duplicate %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark duplicate %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const updateCandidateQuery = `UPDATE candidates
	SET dni = $2, first_name = $3, last_name = $4, maternal_last_name = $5, email = $6,
		phone = $7, phone_normalized = $8, name_phonetic = $9, address = $10, zone = $11,
		status = $12, is_duplicate = $13, duplicate_of = $14, dedup_reviewed = $15,
		dedup_reviewed_at = $16, dedup_reviewed_by = $17, times_hired = $18,
		last_hired_at = $19, last_contacted_at = $20, notes = $21, tags = $22,
		updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL`

func updateCandidateArgs(c *Candidate) []interface{} {
	return []interface{}{
		c.ID, c.DNI, c.FirstName, c.LastName, c.MaternalLastName, c.Email,
		c.Phone, c.PhoneNormalized, c.NamePhonetic, c.Address, c.Zone,
		c.Status, c.IsDuplicate, c.DuplicateOf, c.DedupReviewed,
		c.DedupReviewedAt, c.DedupReviewedBy, c.TimesHired,
		c.LastHiredAt, c.LastContactedAt, c.Notes, strings.Join(c.Tags, ","),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*Candidate, error) {
	c := &Candidate{}
	var (
		duplicateOf     sql.NullString
		reviewedAt      sql.NullTime
		lastHiredAt     sql.NullTime
		lastContactedAt sql.NullTime
		deletedAt       sql.NullTime
		tags            string
	)
	err := row.Scan(
		&c.ID, &c.DNI, &c.FirstName, &c.LastName, &c.MaternalLastName, &c.Email,
		&c.Phone, &c.PhoneNormalized, &c.NamePhonetic, &c.Address, &c.Zone,
		&c.Status, &c.IsDuplicate, &duplicateOf, &c.DedupReviewed,
		&reviewedAt, &c.DedupReviewedBy, &c.TimesHired,
		&lastHiredAt, &lastContactedAt, &c.Notes, &tags,
		&deletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if duplicateOf.Valid {
		c.DuplicateOf = &duplicateOf.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		c.DedupReviewedAt = &t
	}
	if lastHiredAt.Valid {
		t := lastHiredAt.Time
		c.LastHiredAt = &t
	}
	if lastContactedAt.Valid {
		t := lastContactedAt.Time
		c.LastContactedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	if tags != "" {
		c.Tags = splitAndTrim(tags)
	}
	return c, nil
}
