// Package templates reads and writes checklist templates in the exchange
// format shared with the web client:
//
//	[{"area": "Segurança", "items": [{"descricao": "...", "peso": 5, "obrigatoria": true, "ordem": 1}]}]
//
// The same shape is accepted as YAML.
package templates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"audti-backend-go/internal/models"
)

// Format is a template file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for formats other than JSON and YAML.
var ErrUnsupportedFormat = errors.New("unsupported template format")

// ErrInvalidTemplate is returned when a template file cannot be used.
var ErrInvalidTemplate = errors.New("invalid template")

// Area is one category of the template file.
type Area struct {
	Area  string `json:"area" yaml:"area"`
	Items []Item `json:"items" yaml:"items"`
}

// Item is one checklist row of the template file.
type Item struct {
	Descricao   string `json:"descricao" yaml:"descricao"`
	Peso        *int   `json:"peso,omitempty" yaml:"peso,omitempty"`
	Obrigatoria bool   `json:"obrigatoria" yaml:"obrigatoria"`
	Ordem       int    `json:"ordem" yaml:"ordem"`
}

// ParseFormat maps a format name or content type to a Format.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	switch s {
	case "", "json", "application/json":
		return FormatJSON, nil
	case "yaml", "yml", "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type used when serving f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Decode parses a template file into item creation requests. Items without
// an order are numbered by their position in the area.
func Decode(data []byte, format Format) ([]models.CreateChecklistItemRequest, error) {
	var areas []Area
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&areas); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&areas); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var out []models.CreateChecklistItemRequest
	for i, area := range areas {
		name := strings.TrimSpace(area.Area)
		if name == "" {
			return nil, fmt.Errorf("%w: area %d has no name", ErrInvalidTemplate, i+1)
		}
		for j, item := range area.Items {
			if strings.TrimSpace(item.Descricao) == "" {
				return nil, fmt.Errorf("%w: item %d of area %q has no description", ErrInvalidTemplate, j+1, name)
			}
			order := item.Ordem
			if order == 0 {
				order = j + 1
			}
			out = append(out, models.CreateChecklistItemRequest{
				Category:    name,
				Description: strings.TrimSpace(item.Descricao),
				Weight:      item.Peso,
				Required:    item.Obrigatoria,
				Order:       order,
			})
		}
	}
	return out, nil
}

// Encode writes checklist items in the template format, one area per
// category in the order the categories first appear.
func Encode(items []models.ChecklistItem, format Format) ([]byte, error) {
	areas := []Area{}
	index := map[string]int{}
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(areas)
			index[item.Category] = i
			areas = append(areas, Area{Area: item.Category, Items: []Item{}})
		}
		weight := item.Weight
		areas[i].Items = append(areas[i].Items, Item{
			Descricao:   item.Description,
			Peso:        &weight,
			Obrigatoria: item.Required,
			Ordem:       item.Order,
		})
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(areas, "", "  ")
	case FormatYAML:
		return yaml.Marshal(areas)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
