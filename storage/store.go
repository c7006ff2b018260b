package storage

import (
	"encoding/json"
	"os"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// Links maps Discord user ids to FACEIT nicknames. Link overwrites any
// previous nickname for the same user.
type Links interface {
	Link(discordID, username string) error
	Lookup(discordID string) (string, bool, error)
	All() (map[string]string, error)
}

// FileStore keeps the whole mapping in a single JSON object on disk and
// rewrites the file on every change. A mutex covers the load-modify-save
// cycle so concurrent links cannot lose each other's writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load treats a missing or unreadable file as "no links yet".
func (s *FileStore) load() map[string]string {
	links := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return links
	}
	if err := json.Unmarshal(data, &links); err != nil {
		return map[string]string{}
	}
	return links
}

func (s *FileStore) save(links map[string]string) error {
	data, err := json.Marshal(links)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Link(discordID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := s.load()
	links[discordID] = username
	return s.save(links)
}

func (s *FileStore) Lookup(discordID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.load()[discordID]
	return username, ok, nil
}

func (s *FileStore) All() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

var linksBucket = []byte("links")

// BoltStore is the embedded-db alternative to FileStore, one key per user.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(db *bolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

func MustInitDB(db *bolt.DB) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(linksBucket)
		return err
	})
	if err != nil {
		panic(err)
	}
}

func (s *BoltStore) Link(discordID, username string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(linksBucket).Put([]byte(discordID), []byte(username))
	})
}

func (s *BoltStore) Lookup(discordID string) (string, bool, error) {
	var username string
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(linksBucket).Get([]byte(discordID))
		if len(data) == 0 {
			return nil
		}
		username = string(data)
		ok = true
		return nil
	})
	return username, ok, err
}

func (s *BoltStore) All() (map[string]string, error) {
	links := map[string]string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(linksBucket).ForEach(func(k, v []byte) error {
			links[string(k)] = string(v)
			return nil
		})
	})
	return links, err
}
