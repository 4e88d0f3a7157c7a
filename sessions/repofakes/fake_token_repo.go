package fakesessionrepo

import (
	"context"
	"sync"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/sessions"
)

var _ sessions.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

func (tr *FakeTokenRepo) Get(_ context.Context, key string) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	v, ok := tr.values[key]
	if !ok {
		return "", cerrors.ErrNotFound
	}
	return v, nil
}

func (tr *FakeTokenRepo) Set(_ context.Context, key, value string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.values[key] = value
	return nil
}

func (tr *FakeTokenRepo) Delete(_ context.Context, key string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if _, ok := tr.values[key]; !ok {
		return cerrors.ErrNotFound
	}
	delete(tr.values, key)
	return nil
}

// Len returns the number of stored keys
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.values)
}
