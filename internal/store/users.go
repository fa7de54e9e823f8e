package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	APIKey       string `db:"api_key"`
}

const selectUserSQL = `SELECT id, username, password_hash, role, api_key FROM users`

// CreateUser inserts a user and its language list.
// Returns a KindConflict error if the username is taken.
func (s *Store) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	if nu.Username == "" {
		return User{}, invalid("EMPTY_USERNAME", "username is required")
	}
	if !nu.Role.Valid() {
		return User{}, invalid("BAD_ROLE", "unknown role %q", nu.Role)
	}
	if nu.APIKey == "" {
		return User{}, invalid("EMPTY_API_KEY", "api key is required")
	}

	var id int64
	err := s.withTx(ctx, "create user", func(tx *sqlx.Tx) error {
		var existing int
		if err := tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM users WHERE username = ?`, nu.Username); err != nil {
			return fmt.Errorf("create user: lookup: %w", err)
		}
		if existing > 0 {
			return conflict("USERNAME_TAKEN", "user %q already exists", nu.Username)
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (username, password_hash, role, api_key)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`, nu.Username, nu.PasswordHash, string(nu.Role), nu.APIKey).Scan(&id)
		if err != nil {
			return fmt.Errorf("create user: %w", classifyConstraint(err, "api key already in use"))
		}

		return replaceUserLanguages(ctx, tx, id, nu.LanguageCodes)
	})
	if err != nil {
		return User{}, err
	}

	return s.getUser(ctx, "id = ?", id)
}

// GetUserByUsername returns a user or a KindNotFound error.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// GetUserByAPIKey returns a user or a KindNotFound error.
func (s *Store) GetUserByAPIKey(ctx context.Context, apiKey string) (User, error) {
	return s.getUser(ctx, "api_key = ?", apiKey)
}

// ListUsers returns users ordered by id, restricted to role when non-empty.
func (s *Store) ListUsers(ctx context.Context, role Role) ([]User, error) {
	query := selectUserSQL + ` ORDER BY id ASC`
	args := []any{}
	if role != "" {
		query = selectUserSQL + ` WHERE role = ? ORDER BY id ASC`
		args = append(args, string(role))
	}

	var rows []userRow
	if err := s.dbx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, 0, len(rows))
	for _, r := range rows {
		codes, err := s.userLanguages(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, r.toUser(codes))
	}
	return users, nil
}

// AdminUserExists reports whether any admin account exists.
func (s *Store) AdminUserExists(ctx context.Context) (bool, error) {
	var count int
	if err := s.dbx.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = ?`, string(RoleAdmin)); err != nil {
		return false, fmt.Errorf("admin user exists: %w", err)
	}
	return count > 0, nil
}

// UpdateUserPassword replaces a user's password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, username, passwordHash string) (User, error) {
	return s.updateUser(ctx, "update user password", username, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash)
}

// UpdateUserAPIKey replaces a user's API key.
func (s *Store) UpdateUserAPIKey(ctx context.Context, username, apiKey string) (User, error) {
	if apiKey == "" {
		return User{}, invalid("EMPTY_API_KEY", "api key is required")
	}
	return s.updateUser(ctx, "update user api key", username, `UPDATE users SET api_key = ? WHERE id = ?`, apiKey)
}

// UpdateUserLanguages replaces a user's language list.
func (s *Store) UpdateUserLanguages(ctx context.Context, username string, languageCodes []string) (User, error) {
	var id int64
	err := s.withTx(ctx, "update user languages", func(tx *sqlx.Tx) error {
		var err error
		id, err = userIDByName(ctx, tx, username)
		if err != nil {
			return err
		}
		return replaceUserLanguages(ctx, tx, id, languageCodes)
	})
	if err != nil {
		return User{}, err
	}
	return s.getUser(ctx, "id = ?", id)
}

// ListLanguageCodes returns the distinct language codes assigned to any user,
// sorted.
func (s *Store) ListLanguageCodes(ctx context.Context) ([]string, error) {
	codes := []string{}
	if err := s.dbx.SelectContext(ctx, &codes, `SELECT DISTINCT language_code FROM user_languages ORDER BY language_code ASC`); err != nil {
		return nil, fmt.Errorf("list language codes: %w", err)
	}
	return codes, nil
}

func (s *Store) updateUser(ctx context.Context, op, username, stmt string, value string) (User, error) {
	var id int64
	err := s.withTx(ctx, op, func(tx *sqlx.Tx) error {
		var err error
		id, err = userIDByName(ctx, tx, username)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, stmt, value, id); err != nil {
			return fmt.Errorf("%s: %w", op, classifyConstraint(err, "value already in use"))
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (User, error) {
	var row userRow
	err := s.dbx.GetContext(ctx, &row, selectUserSQL+` WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, notFound("USER_NOT_FOUND", "no user matches %v", arg)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}

	codes, err := s.userLanguages(ctx, row.ID)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(codes), nil
}

func (s *Store) userLanguages(ctx context.Context, userID int64) ([]string, error) {
	codes := []string{}
	err := s.dbx.SelectContext(ctx, &codes, `
		SELECT language_code FROM user_languages
		WHERE user_id = ?
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("user languages: %w", err)
	}
	return codes, nil
}

func (r userRow) toUser(codes []string) User {
	return User{
		ID:            r.ID,
		Username:      r.Username,
		PasswordHash:  r.PasswordHash,
		Role:          Role(r.Role),
		APIKey:        r.APIKey,
		LanguageCodes: codes,
	}
}

func replaceUserLanguages(ctx context.Context, tx *sqlx.Tx, userID int64, codes []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_languages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear user languages: %w", err)
	}
	for _, code := range codes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_languages (user_id, language_code)
			VALUES (?, ?)
			ON CONFLICT(user_id, language_code) DO NOTHING
		`, userID, code); err != nil {
			return fmt.Errorf("insert user language %q: %w", code, err)
		}
	}
	return nil
}

func userIDByName(ctx context.Context, q sqlx.QueryerContext, username string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, `SELECT id FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("USER_NOT_FOUND", "user %q does not exist", username)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup user %q: %w", username, err)
	}
	return id, nil
}

// requireUser fails with KindNotFound unless userID references a user.
func requireUser(ctx context.Context, q sqlx.QueryerContext, userID int64) error {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("lookup user %d: %w", userID, err)
	}
	if count == 0 {
		return notFound("USER_NOT_FOUND", "user %d does not exist", userID)
	}
	return nil
}
