package postgres

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/review-system/internal/auth"
)

// Repository implements auth.UserRepository over sqlx. Credential lookups
// stay as raw queries so the auth path never drags in the full user model.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type accountRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Role         string `db:"role"`
	Active       bool   `db:"active"`
}

func (r *Repository) GetByUsername(username string) (*auth.Account, error) {
	var row accountRow
	query := `SELECT id, username, email, password_hash, first_name, last_name, role, active
	          FROM users WHERE username = $1`
	if err := r.db.Get(&row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return rowToAccount(&row), nil
}

func (r *Repository) UsernameExists(username string) (bool, error) {
	var exists bool
	if err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var exists bool
	if err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repository) Create(account *auth.Account) error {
	query := `INSERT INTO users (username, email, password_hash, first_name, last_name, role, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	          RETURNING id`
	return r.db.QueryRow(query,
		account.Username, account.Email, account.PasswordHash,
		account.FirstName, account.LastName, string(account.Role), account.Active,
	).Scan(&account.ID)
}

func (r *Repository) GetCallerByID(id int64) (*auth.Caller, error) {
	var row struct {
		ID       int64  `db:"id"`
		Username string `db:"username"`
		Role     string `db:"role"`
		Active   bool   `db:"active"`
	}
	query := `SELECT id, username, role, active FROM users WHERE id = $1`
	if err := r.db.Get(&row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return &auth.Caller{
		ID:       row.ID,
		Username: row.Username,
		Role:     auth.Role(row.Role),
		Active:   row.Active,
	}, nil
}

func rowToAccount(row *accountRow) *auth.Account {
	return &auth.Account{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Role:         auth.Role(row.Role),
		Active:       row.Active,
	}
}
