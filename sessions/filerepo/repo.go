// Package filerepo stores session tokens in a JSON file, optionally sealed with
// a key derived from a passphrase.
package filerepo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/sessions"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var _ sessions.Repo = (*Repo)(nil)

var ErrSealedFile = errors.New("token file could not be opened with the configured passphrase")

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32
)

// sealedFile is the on-disk format when a passphrase is configured
type sealedFile struct {
	Salt []byte `json:"salt"`
	Box  []byte `json:"box"` // nonce followed by the secretbox output
}

type Repo struct {
	path       string
	passphrase string
	mu         sync.Mutex
}

// New returns a repo writing to path. An empty passphrase stores plain JSON.
func New(path, passphrase string) *Repo {
	return &Repo{path: path, passphrase: passphrase}
}

func (r *Repo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", cerrors.ErrNotFound
	}
	return v, nil
}

func (r *Repo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	values[key] = value
	return r.write(values)
}

func (r *Repo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return cerrors.ErrNotFound
	}
	delete(values, key)
	return r.write(values)
}

func (r *Repo) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "filerepo.read ReadFile")
	}

	if r.passphrase != "" {
		if data, err = r.open(data); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "filerepo.read Unmarshal")
	}
	return values, nil
}

// write replaces the file atomically via a temp file in the same directory
func (r *Repo) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "filerepo.write Marshal")
	}
	if r.passphrase != "" {
		if data, err = r.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "filerepo.write MkdirAll")
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return errors.Wrap(err, "filerepo.write CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "filerepo.write Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "filerepo.write Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "filerepo.write Close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), r.path), "filerepo.write Rename")
}

func (r *Repo) seal(plain []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "filerepo.seal salt")
	}
	key, err := r.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "filerepo.seal nonce")
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, key)
	return json.Marshal(sealedFile{Salt: salt, Box: box})
}

func (r *Repo) open(data []byte) ([]byte, error) {
	var sf sealedFile
	if err := json.Unmarshal(data, &sf); err != nil || len(sf.Box) < nonceLength {
		return nil, ErrSealedFile
	}
	key, err := r.deriveKey(sf.Salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceLength]byte
	copy(nonce[:], sf.Box[:nonceLength])
	plain, ok := secretbox.Open(nil, sf.Box[nonceLength:], &nonce, key)
	if !ok {
		return nil, ErrSealedFile
	}
	return plain, nil
}

func (r *Repo) deriveKey(salt []byte) (*[keyLength]byte, error) {
	derived, err := scrypt.Key([]byte(r.passphrase), salt, 1<<15, 8, 1, keyLength)
	if err != nil {
		return nil, errors.Wrap(err, "filerepo.deriveKey")
	}
	var key [keyLength]byte
	copy(key[:], derived)
	return &key, nil
}
