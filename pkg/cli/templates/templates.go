// Package templates provides embedded starter datasets for bookshelf init.
package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dinhlab/supreme-fiesta/pkg/book"
)

//go:embed *.json
var templateFS embed.FS

// Template represents a starter dataset.
type Template struct {
	ID          string
	Description string
	Filename    string
}

// DefaultID is the template used when none is named.
const DefaultID = "empty"

// AvailableTemplates returns all available starter datasets.
var AvailableTemplates = []Template{
	{
		ID:          "empty",
		Description: "No books",
		Filename:    "empty.json",
	},
	{
		ID:          "classics",
		Description: "A handful of world classics",
		Filename:    "classics.json",
	},
}

// Get returns the dataset of the template named id.
func Get(id string) (*book.Dataset, error) {
	t, err := GetTemplate(id)
	if err != nil {
		return nil, err
	}
	data, err := templateFS.ReadFile(t.Filename)
	if err != nil {
		return nil, err
	}
	var ds book.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("template %s: %w", t.ID, err)
	}
	if ds.Books == nil {
		ds.Books = []book.Book{}
	}
	return &ds, nil
}

// GetTemplate returns the Template metadata by ID.
func GetTemplate(id string) (*Template, error) {
	for i := range AvailableTemplates {
		if strings.EqualFold(AvailableTemplates[i].ID, id) {
			return &AvailableTemplates[i], nil
		}
	}
	return nil, fmt.Errorf("unknown template: %s (available: %s)", id, strings.Join(List(), ", "))
}

// List returns all template IDs sorted alphabetically.
func List() []string {
	ids := make([]string, len(AvailableTemplates))
	for i, t := range AvailableTemplates {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	return ids
}
