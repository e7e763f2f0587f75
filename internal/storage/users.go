package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hoanghai1803/tickerwire/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateUser inserts a user and returns its ID. The email is stored
// lowercased. It returns ErrDuplicate if the email is already registered.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users
			(email, name, country, investment_goals, risk_tolerance, preferred_industry)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		email, user.Name, user.Country, user.InvestmentGoals,
		user.RiskTolerance, user.PreferredIndustry,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("creating user %q: %w", email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting user id: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the user registered under email (case-insensitive).
// Returns nil, ErrNotFound if no user matches.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, country, investment_goals, risk_tolerance,
				preferred_industry, created_at
		 FROM users WHERE email = ?`, strings.TrimSpace(email))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", email, err)
	}
	return user, nil
}

// ListUsers returns every registered user ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, country, investment_goals, risk_tolerance,
				preferred_industry, created_at
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return users, nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		user      models.User
		createdAt string
	)
	if err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Country, &user.InvestmentGoals,
		&user.RiskTolerance, &user.PreferredIndustry, &createdAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = parseTime(createdAt)
	return &user, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
