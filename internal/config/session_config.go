package config

import "path/filepath"

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type SessionConfig interface {
	GetTokenStore() string
	GetTokenStorePath() string
	GetTokenPassphrase() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetTokenStore() string {
	if GetEnv("TOKEN_STORE", StoreFile) == StoreSQLite {
		return StoreSQLite
	}
	return StoreFile
}

func (s Session) GetTokenStorePath() string {
	name := "tokens.json"
	if s.GetTokenStore() == StoreSQLite {
		name = "tokens.db"
	}
	return GetEnv("TOKEN_STORE_PATH", filepath.Join(EnvVars{}.GetDataFolder(), name))
}

// GetTokenPassphrase seals the token file when set
func (Session) GetTokenPassphrase() string {
	return GetEnv("TOKEN_PASSPHRASE", "")
}
