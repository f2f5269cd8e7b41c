package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Cookie struct {
	Name    string    `yaml:"name"`
	Value   string    `yaml:"value"`
	Expires time.Time `yaml:"expires"`
}

// CookieStore is where the session is mirrored. Expired cookies read as absent.
type CookieStore interface {
	Get(name string) (string, bool)
	Set(c Cookie) error
	Delete(name string) error
}

type MemoryStore struct {
	mu      sync.Mutex
	cookies map[string]Cookie
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cookies: map[string]Cookie{}, now: time.Now}
}

func (m *MemoryStore) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cookies[name]
	if !ok {
		return "", false
	}
	if !c.Expires.IsZero() && !m.now().Before(c.Expires) {
		delete(m.cookies, name)
		return "", false
	}
	return c.Value, true
}

func (m *MemoryStore) Set(c Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies[c.Name] = c
	return nil
}

func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cookies, name)
	return nil
}

// FileStore keeps cookies in a YAML file so CLI invocations share a login.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// DefaultFilePath is ~/.config/invctl/session.yaml.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "invctl", "session.yaml"), nil
}

func (f *FileStore) Get(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cookies, err := f.load()
	if err != nil {
		return "", false
	}
	for _, c := range cookies {
		if c.Name != name {
			continue
		}
		if !c.Expires.IsZero() && !f.now().Before(c.Expires) {
			return "", false
		}
		return c.Value, true
	}
	return "", false
}

func (f *FileStore) Set(c Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cookies, err := f.load()
	if err != nil {
		return err
	}
	out := cookies[:0]
	for _, existing := range cookies {
		if existing.Name != c.Name {
			out = append(out, existing)
		}
	}
	return f.save(append(out, c))
}

func (f *FileStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cookies, err := f.load()
	if err != nil {
		return err
	}
	out := cookies[:0]
	for _, c := range cookies {
		if c.Name != name {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return f.save(out)
}

func (f *FileStore) load() ([]Cookie, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc struct {
		Cookies []Cookie `yaml:"cookies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Cookies, nil
}

func (f *FileStore) save(cookies []Cookie) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(struct {
		Cookies []Cookie `yaml:"cookies"`
	}{cookies})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}
