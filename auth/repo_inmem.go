package auth

import (
	"context"
	"sync"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[ID]*Account
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) Store(_ context.Context, acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, v := range repo.accounts {
		if v.Credentials.Username == acc.Credentials.Username || v.Credentials.Nickname == acc.Credentials.Nickname {
			return ErrDuplicate
		}
	}

	a := *acc
	repo.accounts[acc.ID] = &a
	return nil
}

func (repo *accountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if u, ok := repo.accounts[id]; ok {
		a := *u
		return &a, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByName(_ context.Context, username string) (*Account, error) {
	return repo.findBy(func(a *Account) bool { return a.Credentials.Username == username })
}

func (repo *accountRepository) FindByNickname(_ context.Context, nickname string) (*Account, error) {
	return repo.findBy(func(a *Account) bool { return a.Credentials.Nickname == nickname })
}

func (repo *accountRepository) findBy(match func(*Account) bool) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, v := range repo.accounts {
		if match(v) {
			a := *v
			return &a, nil
		}
	}
	return nil, ErrNotFound
}
