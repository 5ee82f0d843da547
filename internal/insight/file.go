package insight

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML layout of a catalog.
type catalogFile struct {
	Topics   []Topic            `yaml:"topics"`
	Payloads map[string]Payload `yaml:"payloads"`
}

// FileRepository serves a catalog read from a YAML file. The file is read on
// first use; concurrent first lookups share a single read.
type FileRepository struct {
	path  string
	group singleflight.Group

	mu     sync.Mutex
	loaded *StaticRepository
}

// NewFileRepository creates a repository backed by the YAML file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the catalog now, returning any parse error.
func (r *FileRepository) Load() error {
	_, err := r.repo()
	return err
}

// Lookup implements Repository.
func (r *FileRepository) Lookup(ctx context.Context, topic string) (Payload, error) {
	repo, err := r.repo()
	if err != nil {
		return Payload{}, err
	}
	return repo.Lookup(ctx, topic)
}

// Topics implements Repository. It returns nil when the file cannot be read.
func (r *FileRepository) Topics() []Topic {
	repo, err := r.repo()
	if err != nil {
		return nil
	}
	return repo.Topics()
}

func (r *FileRepository) repo() (*StaticRepository, error) {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if loaded != nil {
		return loaded, nil
	}

	v, err, _ := r.group.Do(r.path, func() (interface{}, error) {
		repo, err := loadCatalog(r.path)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.loaded = repo
		r.mu.Unlock()
		return repo, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*StaticRepository), nil
}

func loadCatalog(path string) (*StaticRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("catalog %s defines no topics", path)
	}
	for _, t := range file.Topics {
		if _, ok := file.Payloads[t.Key]; !ok {
			return nil, fmt.Errorf("catalog %s: topic %q has no payload", path, t.Key)
		}
	}

	return NewStaticRepository(file.Topics, file.Payloads), nil
}

// WriteCatalog serializes a repository's topics and payloads as YAML, in the
// layout FileRepository reads.
func WriteCatalog(ctx context.Context, repo Repository, path string) error {
	topics := repo.Topics()
	file := catalogFile{
		Topics:   topics,
		Payloads: make(map[string]Payload, len(topics)),
	}
	for _, t := range topics {
		p, err := repo.Lookup(ctx, t.Key)
		if err != nil {
			return err
		}
		file.Payloads[t.Key] = p
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}
