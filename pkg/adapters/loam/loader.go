// Package loam loads the report reason table from a directory of documents,
// one category per file.
//
// A category document carries its definition in frontmatter:
//
//	---
//	value: "5"
//	label: report.reasonPersonal
//	prompt: report.promptPersonal
//	subcategories:
//	  - value: ""
//	    label: report.reasonPlaceHolder
//	    prompt: report.promptPlaceholder
//	  - value: "4"
//	    label: report.reasonMusic
//	    prompt: report.promptMusic
//	    prevent_submission: true
//	---
//	Free-form notes for catalog maintainers.
//
// Documents are ordered by id, so prefixing file names with a number
// ("00-placeholder.md", "10-copy.md") fixes the display order. Values must be
// quoted so that "0" stays a string.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/aretw0/loam"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/ports"
)

// Loader implements ports.CatalogLoader over a loam repository.
type Loader struct {
	Repo *loam.TypedRepository[CategoryMetadata]
}

var _ ports.CatalogLoader = (*Loader)(nil)

func New(repo *loam.TypedRepository[CategoryMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only, strict loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[CategoryMetadata](repo)), nil
}

// LoadCatalog reads every document and validates the resulting table.
func (l *Loader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})

	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, toCategory(doc.Data))
	}

	c, err := domain.NewCatalog(categories)
	if err != nil {
		return nil, fmt.Errorf("catalog in %d documents: %w", len(docs), err)
	}
	return c, nil
}

func toCategory(m CategoryMetadata) domain.Category {
	cat := domain.Category{
		Value:  m.Value,
		Label:  domain.Msg(m.Label),
		Prompt: domain.Msg(m.Prompt),
	}
	for _, s := range m.Subcategories {
		cat.Subcategories = append(cat.Subcategories, domain.Subcategory{
			Value:             s.Value,
			Label:             domain.Msg(s.Label),
			Prompt:            domain.Msg(s.Prompt),
			PreventSubmission: s.PreventSubmission,
		})
	}
	return cat
}
