// Package file stores a paper library as a directory of markdown files with
// YAML front matter plus a single relationships.yaml.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/pathutil"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

const (
	PapersDir         = "papers"
	RelationshipsFile = "relationships.yaml"
)

type relationshipsDocument struct {
	Relationships []paper.Relationship `yaml:"relationships"`
}

// Store is a file backed store.Store rooted at a library directory.
type Store struct {
	mu   sync.Mutex
	root string
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// New opens the library at root, creating the papers directory when absent.
func New(root string) (*Store, error) {
	normalized := pathutil.NormalizePath(root)
	if normalized == "" {
		return nil, errors.New("library directory cannot be empty")
	}
	if err := os.MkdirAll(filepath.Join(normalized, PapersDir), 0o755); err != nil {
		return nil, fmt.Errorf("create library: %w", err)
	}
	return &Store{root: normalized, now: time.Now}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Papers(ctx context.Context) ([]paper.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPapers(ctx)
}

func (s *Store) Relationships(ctx context.Context) ([]paper.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRelationships()
}

func (s *Store) CreatePaper(ctx context.Context, p paper.Paper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(p.ID); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	papers, err := s.loadPapers(ctx)
	if err != nil {
		return err
	}
	for _, existing := range papers {
		if existing.ID == p.ID {
			return fmt.Errorf("%w: %s", store.ErrPaperExists, p.ID)
		}
	}

	if p.Added.IsZero() {
		p.Added = s.now().UTC()
	}
	p.Path = s.paperPath(p.ID)
	if _, err := os.Stat(p.Path); err == nil {
		return fmt.Errorf("%w: %s", store.ErrPaperExists, p.Path)
	}
	return s.writePaper(p)
}

func (s *Store) UpdatePaper(ctx context.Context, p paper.Paper) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findPaper(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Path = existing.Path
	if p.Added.IsZero() {
		p.Added = existing.Added
	}
	return s.writePaper(p)
}

func (s *Store) DeletePaper(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findPaper(ctx, id)
	if err != nil {
		return err
	}

	rels, err := s.loadRelationships()
	if err != nil {
		return err
	}
	kept := rels[:0]
	for _, rel := range rels {
		if rel.From != id && rel.To != id {
			kept = append(kept, rel)
		}
	}
	if err := s.saveRelationships(kept); err != nil {
		return err
	}

	if err := os.Remove(existing.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", existing.Path, err)
	}
	return nil
}

func (s *Store) AddRelationship(
	ctx context.Context,
	rel paper.Relationship,
) (paper.Relationship, bool, error) {
	rel, err := store.Prepare(rel)
	if err != nil {
		return paper.Relationship{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	papers, err := s.loadPapers(ctx)
	if err != nil {
		return paper.Relationship{}, false, err
	}
	byID := paper.Index(papers)
	for _, id := range []string{rel.From, rel.To} {
		if _, ok := byID[id]; !ok {
			return paper.Relationship{}, false, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
		}
	}

	rels, err := s.loadRelationships()
	if err != nil {
		return paper.Relationship{}, false, err
	}
	for _, existing := range rels {
		if existing.Key() == rel.Key() {
			return existing, false, nil
		}
	}

	if err := s.saveRelationships(append(rels, rel)); err != nil {
		return paper.Relationship{}, false, err
	}
	return rel, true, nil
}

func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rels, err := s.loadRelationships()
	if err != nil {
		return err
	}
	for i, rel := range rels {
		if rel.ID == id {
			return s.saveRelationships(append(rels[:i], rels[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", store.ErrRelationshipNotFound, id)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) paperPath(id string) string {
	return filepath.Join(s.root, PapersDir, id+".md")
}

func (s *Store) findPaper(ctx context.Context, id string) (paper.Paper, error) {
	papers, err := s.loadPapers(ctx)
	if err != nil {
		return paper.Paper{}, err
	}
	for _, p := range papers {
		if p.ID == id {
			return p, nil
		}
	}
	return paper.Paper{}, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
}

func (s *Store) loadPapers(ctx context.Context) ([]paper.Paper, error) {
	paths, err := s.collectPaperPaths()
	if err != nil {
		return nil, err
	}

	papers := make([]paper.Paper, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := loadPaper(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			logger.Warn("skipping invalid paper", "path", path, "err", err)
			continue
		}
		if first, dup := seen[p.ID]; dup {
			logger.Warn("skipping duplicate paper id", "id", p.ID, "path", path, "kept", first)
			continue
		}
		seen[p.ID] = path
		papers = append(papers, p)
	}
	return papers, nil
}

func (s *Store) collectPaperPaths() ([]string, error) {
	dir := filepath.Join(s.root, PapersDir)
	paths := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func loadPaper(path string) (paper.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return paper.Paper{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return paper.Paper{}, err
	}

	p, err := decodePaper(data)
	if err != nil {
		return paper.Paper{}, err
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if p.Added.IsZero() {
		p.Added = info.ModTime().UTC()
	}
	p.Path = filepath.Clean(path)
	return p, nil
}

func (s *Store) writePaper(p paper.Paper) error {
	data, err := encodePaper(p)
	if err != nil {
		return err
	}
	return writeFileAtomic(p.Path, data)
}

func (s *Store) loadRelationships() ([]paper.Relationship, error) {
	path := filepath.Join(s.root, RelationshipsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make([]paper.Relationship, 0), nil
		}
		return nil, err
	}

	var doc relationshipsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	kept, invalid := store.Dedupe(doc.Relationships)
	for _, rel := range invalid {
		logger.Warn("skipping invalid relationship", "id", rel.ID, "from", rel.From, "to", rel.To)
	}
	return kept, nil
}

func (s *Store) saveRelationships(rels []paper.Relationship) error {
	data, err := yaml.Marshal(relationshipsDocument{Relationships: rels})
	if err != nil {
		return fmt.Errorf("encode relationships: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.root, RelationshipsFile), data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func checkID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" || trimmed != id || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: id %q cannot be used as a file name", paper.ErrInvalidPaper, id)
	}
	return nil
}
