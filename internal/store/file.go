package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/carepoint-health/carepoint-client/internal/constants"
)

// FileStore keeps credentials in a YAML file. Every Get re-reads the file so
// that writes from another process are picked up.
type FileStore struct {
	path  string
	mutex sync.Mutex
}

type fileContents struct {
	Credentials map[string]string `yaml:"credentials"`
}

// NewFileStore creates a store backed by the YAML file at path. The file is
// created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: file store needs a path", constants.ErrStoreConfigRequired)
	}

	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value for key, or "" when absent.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	contents, err := s.load()
	if err != nil {
		return "", err
	}

	return contents.Credentials[key], nil
}

// Set stores value under key.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}

	contents.Credentials[key] = value

	return s.save(contents)
}

// MultiRemove deletes keys with a single file write.
func (s *FileStore) MultiRemove(_ context.Context, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}

	for _, key := range keys {
		delete(contents.Credentials, key)
	}

	return s.save(contents)
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (*fileContents, error) {
	contents := &fileContents{}

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, contents); err != nil {
			return nil, fmt.Errorf("parsing credential file: %w", err)
		}
	}

	if contents.Credentials == nil {
		contents.Credentials = make(map[string]string)
	}

	return contents, nil
}

func (s *FileStore) save(contents *fileContents) error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	data, err := yaml.Marshal(contents)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing credential file: %w", err)
	}

	return nil
}
