package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"easyaccounting/internal/core"
)

// AttachKeyword appends a keyword to the category whose label matches
// exactly. The namespace is implied by the label prefix. Attaching an
// already-attributed keyword is a no-op that still persists the document.
// An unknown label returns core.ErrCategoryNotFound.
func (s *Service) AttachKeyword(ctx context.Context, label, keyword string) error {
	kind := core.KindOfLabel(label)

	cats, err := s.tax.LoadTaxonomy(ctx, kind)
	if err != nil {
		return fmt.Errorf("load %s taxonomy: %w", kind, err)
	}

	found := false
	for i := range cats {
		if cats[i].Label != label {
			continue
		}
		found = true
		if !cats[i].HasKeyword(keyword) {
			cats[i].Keywords = append(cats[i].Keywords, keyword)
		}
		break
	}
	if !found {
		return fmt.Errorf("attach keyword %q to %q: %w", keyword, label, core.ErrCategoryNotFound)
	}

	if err := s.tax.SaveTaxonomy(ctx, kind, cats); err != nil {
		return fmt.Errorf("save %s taxonomy: %w", kind, err)
	}

	slog.InfoContext(ctx, "Keyword attached", "classification", label, "keyword", keyword)
	return nil
}

// CreateCategory appends a new category to the namespace with the next
// sequence number and a single keyword, and returns the formatted label.
// Display names are not required to be unique; the number is the real key.
func (s *Service) CreateCategory(ctx context.Context, name, keyword string, kind core.Kind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("create category %q: invalid kind %q", name, kind)
	}

	cats, err := s.tax.LoadTaxonomy(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("load %s taxonomy: %w", kind, err)
	}

	label := core.FormatLabel(kind, core.NextSequence(cats), name)
	cats = append(cats, core.Category{Label: label, Keywords: []string{keyword}})

	if err := s.tax.SaveTaxonomy(ctx, kind, cats); err != nil {
		return "", fmt.Errorf("save %s taxonomy: %w", kind, err)
	}

	slog.InfoContext(ctx, "Category created", "classification", label, "kind", kind, "keyword", keyword)
	return label, nil
}

// Options returns all category labels of a namespace, sorted. The NN prefix
// keeps the sorted order equal to assignment order.
func (s *Service) Options(ctx context.Context, kind core.Kind) ([]string, error) {
	cats, err := s.tax.LoadTaxonomy(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s taxonomy: %w", kind, err)
	}
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.Label
	}
	sort.Strings(labels)
	return labels, nil
}
