package memory

import (
	"context"
	"time"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

type accountRepo struct {
	s *Store
}

func (r *accountRepo) Create(_ context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account.Email = domain.NormalizeEmail(account.Email)
	for _, existing := range r.s.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	account.ID = newID(account.ID)
	if _, taken := r.s.accounts[account.ID]; taken {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.ID] = *account
	return nil
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	for _, a := range r.s.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepo) Update(_ context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&a)
	for otherID, other := range r.s.accounts {
		if otherID != id && other.Email == a.Email {
			return nil, repository.ErrDuplicate
		}
	}
	a.UpdatedAt = time.Now().UTC()
	r.s.accounts[id] = a
	return &a, nil
}

// Delete cascades to the account's gym logs, plans and plan items.
func (r *accountRepo) Delete(_ context.Context, id string) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.accounts, id)
	for logID, l := range r.s.logs {
		if l.OwnerID == id {
			delete(r.s.logs, logID)
		}
	}
	for planID, p := range r.s.plans {
		if p.OwnerID == id {
			r.s.deletePlanLocked(planID)
		}
	}
	return nil
}
