package providers

import (
	"context"
	"errors"
	"fmt"

	"evalboard/internal/domains"
	"evalboard/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthProvider struct {
	db *pgxpool.Pool
}

func NewAuthProvider(pg *pgxpool.Pool) *AuthProvider {
	return &AuthProvider{
		db: pg,
	}
}

func (s *AuthProvider) SaveAccount(ctx context.Context, passHash string, account domains.Account) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts (full_name, email, role, passhash, created_at)
         VALUES ($1, $2, $3, $4, NOW())`,
		account.FullName, account.Email, "ADMIN", passHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *AuthProvider) GetAccountByEmail(ctx context.Context, email string) (domains.Account, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, full_name, email, passhash AS password, role, created_at, disabled_at
         FROM accounts
         WHERE email = $1 AND disabled_at IS NULL`, email)
	if err != nil {
		return domains.Account{}, err
	}
	defer rows.Close()

	account, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Account{}, storage.ErrNotFound
		}
		return domains.Account{}, err
	}
	return account, nil
}

func (s *AuthProvider) GetAccountByID(ctx context.Context, id int) (domains.Account, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, full_name, email, passhash AS password, role, created_at, disabled_at
         FROM accounts
         WHERE id = $1`, id)
	if err != nil {
		return domains.Account{}, err
	}
	defer rows.Close()

	account, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Account{}, storage.ErrNotFound
		}
		return domains.Account{}, err
	}
	return account, nil
}
