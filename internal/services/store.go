package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/mstamatov/userpipe-backend/internal/models"
)

// ErrDuplicateUser marks re-ingestion of an already persisted uid. The
// pipeline logs it and moves on to the next row.
var ErrDuplicateUser = errors.New("uid already ingested")

// Store is the durable system of record: authoritative for listing, fallback
// for point reads.
type Store interface {
	EnsureSchema(ctx context.Context) error
	TableExists(ctx context.Context, name string) (bool, error)
	InsertUser(ctx context.Context, u models.User) error
	InsertAddress(ctx context.Context, a models.Address) error
	ListUserIDs(ctx context.Context) ([]string, error)
	GetUserWithAddress(ctx context.Context, uid string) (*models.UserWithAddress, error)
}

// PostgresStore persists users and addresses append-only. Rows are never
// updated or deleted.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates both relations and their indexes if absent. Safe to
// call every cycle.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			uid VARCHAR(255) PRIMARY KEY,
			password VARCHAR(255),
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			username VARCHAR(255),
			email VARCHAR(255),
			phone_number VARCHAR(255),
			social_insurance_number VARCHAR(255),
			date_of_birth VARCHAR(255),
			ingested_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS users_address (
			uid VARCHAR(255) PRIMARY KEY REFERENCES users(uid),
			city VARCHAR(255),
			street_name VARCHAR(255),
			street_address VARCHAR(255),
			zip_code VARCHAR(255),
			state VARCHAR(255),
			country VARCHAR(255),
			ingested_at BIGINT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_ingested_at ON users(ingested_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// TableExists reports whether a public table with the given name exists.
func (s *PostgresStore) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// InsertUser appends one user row, stamping ingested_at with the current
// epoch seconds. Duplicate uids return ErrDuplicateUser.
func (s *PostgresStore) InsertUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (
			uid, password, first_name, last_name, username, email,
			phone_number, social_insurance_number, date_of_birth, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.UID, u.Password, u.FirstName, u.LastName, u.Username, u.Email,
		u.PhoneNumber, u.SocialInsuranceNumber, u.DateOfBirth, time.Now().Unix(),
	)
	return wrapDuplicate(err)
}

// InsertAddress appends one address row for an already-persisted user.
func (s *PostgresStore) InsertAddress(ctx context.Context, a models.Address) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users_address (
			uid, city, street_name, street_address, zip_code, state, country, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.UID, a.City, a.StreetName, a.StreetAddress, a.ZipCode, a.State, a.Country,
		time.Now().Unix(),
	)
	return wrapDuplicate(err)
}

// ListUserIDs returns all uids, most recently ingested first.
func (s *PostgresStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid FROM users ORDER BY ingested_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

// GetUserWithAddress returns the joined row for uid, or nil when the uid is
// unknown.
func (s *PostgresStore) GetUserWithAddress(ctx context.Context, uid string) (*models.UserWithAddress, error) {
	var r models.UserWithAddress
	err := s.db.QueryRowContext(ctx,
		`SELECT
			users.uid, first_name, last_name, username, email, phone_number,
			social_insurance_number, date_of_birth,
			city, street_name, street_address, zip_code, state, country
		FROM users
		JOIN users_address ua ON users.uid = ua.uid
		WHERE users.uid = $1`, uid,
	).Scan(
		&r.UID, &r.FirstName, &r.LastName, &r.Username, &r.Email, &r.PhoneNumber,
		&r.SocialInsuranceNumber, &r.DateOfBirth,
		&r.City, &r.StreetName, &r.StreetAddress, &r.ZipCode, &r.State, &r.Country,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func wrapDuplicate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateUser
	}
	return err
}
