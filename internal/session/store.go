package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Sentinel errors
var (
	// ErrNoSession is returned when no token pair is stored.
	ErrNoSession = errors.New("no stored session")
)

// Fixed storage keys for the persisted token pair. Presence of the access
// token key is the sole local signal of "possibly authenticated"; it is not
// proof of validity.
const (
	accessTokenKey  = "token"
	refreshTokenKey = "refreshToken"
)

// tokenFile is the on-disk session file. Tokens are kept under fixed keys so
// the file stays forward-compatible with additional stored values.
type tokenFile struct {
	Version int               `json:"version"`
	Tokens  map[string]string `json:"tokens"`
}

// Store persists the token pair to the local filesystem.
type Store struct {
	baseDir string
}

// NewStore creates a session store rooted at baseDir.
// If baseDir is empty, uses ~/.skybook/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".skybook")
	}

	// Create directory with 0700 permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return &Store{baseDir: baseDir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.baseDir, "session.json")
}

// Save writes the token pair atomically with 0600 permissions.
func (s *Store) Save(accessToken, refreshToken string) error {
	file := tokenFile{
		Version: 1,
		Tokens: map[string]string{
			accessTokenKey:  accessToken,
			refreshTokenKey: refreshToken,
		},
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write to temp file first
	tempPath := s.path() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, s.path()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load reads the stored token pair. Returns ErrNoSession when no file exists
// or no access token is stored.
func (s *Store) Load() (accessToken, refreshToken string, err error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", ErrNoSession
		}
		return "", "", fmt.Errorf("failed to read session: %w", err)
	}

	var file tokenFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", "", fmt.Errorf("failed to parse session: %w", err)
	}

	accessToken = file.Tokens[accessTokenKey]
	if accessToken == "" {
		return "", "", ErrNoSession
	}

	return accessToken, file.Tokens[refreshTokenKey], nil
}

// Clear removes the stored token pair. Removing an absent file is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
