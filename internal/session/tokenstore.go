package session

// The credential token is persisted in a single-row SQLite table so it
// survives restarts. The database is opened lazily and created on first
// use. If opening the DB or executing queries fails, the store falls back
// to process memory and the token simply does not outlive the run.

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/agentmira/mira-go/internal/logger"
)

const tokenKey = "token"

// TokenStore persists the credential token under a well-known key.
type TokenStore struct {
	path string

	mu     sync.Mutex
	memory map[string]string // in-memory fallback, also mirrors the DB

	once    sync.Once
	db      *sql.DB
	initErr error
}

// NewTokenStore creates a TokenStore backed by the SQLite file at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path, memory: make(map[string]string)}
}

// initDB lazily opens the database and creates the credentials table.
func (s *TokenStore) initDB() {
	db, err := sql.Open("sqlite", "file:"+s.path+"?_busy_timeout=10000")
	if err != nil {
		s.initErr = err
		logger.L.Warn("sqlite open failed; credential will not persist", "path", s.path, "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
        key TEXT PRIMARY KEY,
        value TEXT,
        updated_at DATETIME
    );`); err != nil {
		s.initErr = err
		logger.L.Warn("sqlite table creation failed; credential will not persist", "error", err)
		return
	}
	s.db = db
}

// Save stores the token durably and always keeps an in-memory copy.
func (s *TokenStore) Save(token string) {
	s.once.Do(s.initDB)

	if s.initErr == nil && s.db != nil {
		_, err := s.db.Exec(`INSERT INTO credentials (key, value, updated_at) VALUES (?,?,?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;`,
			tokenKey, token, time.Now().UTC())
		if err != nil {
			logger.L.Error("failed to store token in sqlite; falling back to memory", "error", err)
		}
	}

	s.mu.Lock()
	s.memory[tokenKey] = token
	s.mu.Unlock()
}

// Load returns the stored token, if any.
func (s *TokenStore) Load() (string, bool) {
	s.once.Do(s.initDB)

	if s.initErr == nil && s.db != nil {
		var value string
		err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?;`, tokenKey).Scan(&value)
		switch err {
		case nil:
			return value, value != ""
		case sql.ErrNoRows:
			return "", false
		default:
			logger.L.Warn("sqlite token read failed; using in-memory copy", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.memory[tokenKey]
	return value, ok && value != ""
}

// Delete discards the stored token.
func (s *TokenStore) Delete() {
	s.once.Do(s.initDB)

	if s.initErr == nil && s.db != nil {
		if _, err := s.db.Exec(`DELETE FROM credentials WHERE key = ?;`, tokenKey); err != nil {
			logger.L.Warn("sqlite token delete failed", "error", err)
		}
	}

	s.mu.Lock()
	delete(s.memory, tokenKey)
	s.mu.Unlock()
}
