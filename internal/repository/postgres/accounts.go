package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// AccountStore implements repository.AccountRepository.
type AccountStore struct {
	db DBTX
}

var _ repository.AccountRepository = (*AccountStore)(nil)

const accountColumns = `id, name, email, password_hash, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, MapError(err)
	}
	return &a, nil
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.Email = domain.NormalizeEmail(account.Email)
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Name, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	return MapError(err)
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return scanAccount(s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, domain.NormalizeEmail(email)))
}

func (s *AccountStore) Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	var b setBuilder
	if patch.Name.Present() {
		b.add("name", patch.Name.Value)
	}
	if patch.Email.Present() {
		b.add("email", domain.NormalizeEmail(patch.Email.Value))
	}
	if patch.PasswordHash.Present() {
		b.add("password_hash", patch.PasswordHash.Value)
	}
	b.add("updated_at", time.Now().UTC())

	return scanAccount(s.db.QueryRow(ctx,
		`UPDATE accounts SET `+b.clause()+` WHERE id = `+b.arg(id)+` RETURNING `+accountColumns,
		b.args...))
}

// Delete relies on ON DELETE CASCADE for logs, plans and plan items.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	return checkAffected(s.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id))
}
