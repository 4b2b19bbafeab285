package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed schemes/*.json
var embedded embed.FS

// Store looks up schema documents by resource type.
type Store interface {
	Get(resourceType string) (*Document, error)
}

// FileStore loads schema documents from a directory and caches them for the
// lifetime of the store. Documents are looked up as <type>.json, <type>.yaml
// and <type>.yml, in that order.
type FileStore struct {
	fs     afero.Fs
	dir    string
	logger hclog.Logger

	mu    sync.RWMutex
	cache map[string]*Document
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the logger used to trace document loads.
func WithLogger(logger hclog.Logger) FileStoreOption {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileStore creates a store reading documents from dir on fsys.
func NewFileStore(fsys afero.Fs, dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		fs:     fsys,
		dir:    dir,
		logger: hclog.NewNullLogger(),
		cache:  make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("schema")
	return s
}

// NewDirStore creates a store reading documents from a directory on the local
// disk.
func NewDirStore(dir string, opts ...FileStoreOption) *FileStore {
	return NewFileStore(afero.NewOsFs(), dir, opts...)
}

var (
	defaultStore     *FileStore
	defaultStoreOnce sync.Once
)

// DefaultStore returns the process-wide store serving the schema documents
// bundled with this package.
func DefaultStore() *FileStore {
	defaultStoreOnce.Do(func() {
		defaultStore = NewFileStore(afero.FromIOFS{FS: embedded}, "schemes")
	})
	return defaultStore
}

// Get returns the document for resourceType, loading it on first use.
func (s *FileStore) Get(resourceType string) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.cache[resourceType]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}

	// Two callers may load the same document concurrently; the documents are
	// equivalent so whichever is stored last is fine.
	doc, err := s.load(resourceType)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[resourceType] = doc
	s.mu.Unlock()

	return doc, nil
}

func (s *FileStore) load(resourceType string) (*Document, error) {
	name := sanitize(resourceType)
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, resourceType)
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		filename := path.Join(s.dir, name+ext)
		data, err := afero.ReadFile(s.fs, filename)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read schema file %s: %w", filename, err)
		}

		if ext != ".json" {
			data, err = yamlToJSON(data)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, resourceType, err)
			}
		}

		doc, err := Parse(resourceType, data)
		if err != nil {
			return nil, err
		}

		s.logger.Trace("loaded schema document",
			"resource_type", resourceType,
			"file", filename,
			"properties", len(doc.PropertyNames),
			"links", len(doc.Links),
		)
		return doc, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, resourceType)
}

// sanitize strips anything that would let a resource type escape the store
// directory.
func sanitize(resourceType string) string {
	name := strings.TrimSpace(resourceType)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	return name
}

// MemoryStore serves documents registered in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

// Add parses a JSON document and registers it for resourceType.
func (s *MemoryStore) Add(resourceType string, data []byte) error {
	doc, err := Parse(resourceType, data)
	if err != nil {
		return err
	}
	s.Put(doc)
	return nil
}

// Put registers an already parsed document.
func (s *MemoryStore) Put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ResourceType] = doc
}

// Get returns the document registered for resourceType.
func (s *MemoryStore) Get(resourceType string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[resourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resourceType)
	}
	return doc, nil
}

// yamlToJSON converts a YAML document to JSON, keeping mapping key order.
func yamlToJSON(data []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, fmt.Errorf("empty document")
	}

	var buf bytes.Buffer
	if err := writeNode(&buf, &root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, n.Content[0])

	case yaml.AliasNode:
		return writeNode(buf, n.Alias)

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.Write(out)
		return nil
	}

	return fmt.Errorf("line %d: unsupported yaml node", n.Line)
}
