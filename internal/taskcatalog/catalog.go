package taskcatalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/iehaus/buildboard/pkg/cerr"
	"github.com/iehaus/buildboard/pkg/storage"
)

const templatesPrefix = "templates"

type catalogFile struct {
	Templates []*Template `yaml:"templates"`
}

// Catalog loads templates from YAML files under the storage source and serves
// them from an in-memory snapshot. Reload swaps the snapshot atomically, so a
// broken catalog edit never replaces a good one.
type Catalog struct {
	source storage.Source

	mu        sync.RWMutex
	templates []*Template
	byID      map[int]*Template
}

func New(source storage.Source) *Catalog {
	return &Catalog{
		source: source,
		byID:   map[int]*Template{},
	}
}

// Load reads every catalog file and replaces the snapshot. Files are merged
// in name order; templates are ordered by their stable ordinal id.
func (c *Catalog) Load(ctx context.Context) error {
	paths, err := c.source.List(ctx, templatesPrefix)
	if err != nil {
		return fmt.Errorf("failed to list catalog files: %w", err)
	}
	sort.Strings(paths)

	var templates []*Template
	byID := map[int]*Template{}
	for _, p := range paths {
		if !strings.HasSuffix(p, ".yaml") && !strings.HasSuffix(p, ".yml") {
			continue
		}
		data, err := c.source.Read(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to read catalog file %s: %w", p, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("failed to parse catalog file %s: %w", p, err)
		}
		for _, t := range f.Templates {
			if t.ID <= 0 {
				return fmt.Errorf("catalog file %s: template %q has no positive id", p, t.Title)
			}
			if _, dup := byID[t.ID]; dup {
				return fmt.Errorf("catalog file %s: duplicate template id %d", p, t.ID)
			}
			byID[t.ID] = t
			templates = append(templates, t)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	c.mu.Lock()
	c.templates = templates
	c.byID = byID
	c.mu.Unlock()
	return nil
}

func (c *Catalog) List(_ context.Context) ([]*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Template, len(c.templates))
	copy(out, c.templates)
	return out, nil
}

func (c *Catalog) Get(_ context.Context, id int) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byID[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("task template %d not found", id), nil)
	}
	return t, nil
}

// Len returns the number of loaded templates.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}
