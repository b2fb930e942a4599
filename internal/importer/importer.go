// Package importer loads catalog CSV files through the admin write path.
package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/forms"
)

type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// CategoryStore resolves and creates categories. catalog.Repository satisfies it.
type CategoryStore interface {
	RefreshCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// ProductSubmitter validates and writes a product draft. forms.ProductForm
// satisfies it.
type ProductSubmitter interface {
	Submit(ctx context.Context, d forms.ProductDraft) (*domain.Product, error)
}

// CSVImporter reads either a product file
// (title,description,image_url,affiliate_url,price,category,tags,is_active)
// or a category file (name,slug,description,order,is_active).
type CSVImporter struct {
	reader     *csv.Reader
	categories CategoryStore
	products   ProductSubmitter

	byName map[string]domain.ID
}

func NewCSVImporter(r io.Reader, categories CategoryStore, products ProductSubmitter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		categories: categories,
		products:   products,
	}
}

// DetectKind peeks at the header row. A title column means products, a name
// column means categories.
func DetectKind(r io.Reader) (Kind, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read headers: %w", err)
	}
	headers, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", fmt.Errorf("parse headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["title"]; ok {
		return KindProducts, nil
	}
	if _, ok := index["name"]; ok {
		return KindCategories, nil
	}
	return "", fmt.Errorf("unrecognised headers %v", headers)
}

// Run imports every row and returns how many rows were applied. A category
// row whose name already exists counts as applied without a write. Run stops
// at the first failing row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	kind := KindCategories
	if _, ok := index["title"]; ok {
		kind = KindProducts
		if i.products == nil {
			return 0, errors.New("product file given but no product submitter")
		}
	}
	if i.categories == nil {
		return 0, errors.New("category store required")
	}
	if err := i.loadCategories(ctx); err != nil {
		return 0, err
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		if kind == KindProducts {
			err = i.saveProduct(ctx, record, index)
		} else {
			err = i.saveCategory(ctx, record, index)
		}
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) loadCategories(ctx context.Context) error {
	cats, err := i.categories.RefreshCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	i.byName = make(map[string]domain.ID, len(cats))
	for _, c := range cats {
		i.byName[strings.ToLower(strings.TrimSpace(c.Name))] = c.ID
	}
	return nil
}

// resolveCategory matches name case-insensitively and creates the category
// when it does not exist yet.
func (i *CSVImporter) resolveCategory(ctx context.Context, name string) (domain.ID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ID{}, nil
	}
	if id, ok := i.byName[strings.ToLower(name)]; ok {
		return id, nil
	}
	created, err := i.categories.CreateCategory(ctx, domain.Category{Name: name, IsActive: true})
	if err != nil {
		return domain.ID{}, fmt.Errorf("create category %q: %w", name, err)
	}
	i.byName[strings.ToLower(name)] = created.ID
	return created.ID, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, record []string, index map[string]int) error {
	catID, err := i.resolveCategory(ctx, pick(record, index, "category"))
	if err != nil {
		return err
	}
	draft := forms.NewProductDraft()
	draft.Title = pick(record, index, "title")
	draft.Description = pick(record, index, "description")
	draft.ImageURL = pick(record, index, "image_url")
	draft.AffiliateURL = pick(record, index, "affiliate_url")
	draft.Price = pick(record, index, "price")
	draft.Tags = pick(record, index, "tags")
	draft.CategoryID = catID
	draft.IsActive = parseActive(pick(record, index, "is_active"))

	if _, err := i.products.Submit(ctx, draft); err != nil {
		return fmt.Errorf("save product %q: %w", draft.Title, err)
	}
	return nil
}

func (i *CSVImporter) saveCategory(ctx context.Context, record []string, index map[string]int) error {
	draft := forms.NewCategoryDraft()
	draft.Name = pick(record, index, "name")
	draft.Slug = pick(record, index, "slug")
	draft.Description = pick(record, index, "description")
	if v := pick(record, index, "order"); v != "" {
		draft.Order = v
	}
	draft.IsActive = parseActive(pick(record, index, "is_active"))
	if err := draft.Validate(); err != nil {
		return err
	}
	if _, exists := i.byName[strings.ToLower(draft.Name)]; exists {
		return nil
	}
	created, err := i.categories.CreateCategory(ctx, draft.Category())
	if err != nil {
		return fmt.Errorf("create category %q: %w", draft.Name, err)
	}
	i.byName[strings.ToLower(draft.Name)] = created.ID
	return nil
}

// parseActive reads is_active. Empty or unparsable means active.
func parseActive(s string) bool {
	if s == "" {
		return true
	}
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return true
	}
	return b
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
