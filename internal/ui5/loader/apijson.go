// Package loader reads framework metadata from api.json library files into
// a model.Model, caches models per framework version and reloads them when
// the files change.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
)

// ErrUnsupportedFormat is returned for metadata files that are not api.json
// library documents.
var ErrUnsupportedFormat = errors.New("unsupported metadata format")

// apiLibrary is the top-level object of an api.json file.
type apiLibrary struct {
	Version string      `json:"version"`
	Library string      `json:"library"`
	Symbols []apiSymbol `json:"symbols"`
}

type apiStatus struct {
	Since string `json:"since"`
	Text  string `json:"text"`
}

type apiMeta struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Since        string     `json:"since"`
	Visibility   string     `json:"visibility"`
	Deprecated   *apiStatus `json:"deprecated"`
	Experimental *apiStatus `json:"experimental"`
}

type apiSymbol struct {
	apiMeta
	Kind       string          `json:"kind"`
	Extends    string          `json:"extends"`
	Implements []string        `json:"implements"`
	Abstract   bool            `json:"abstract"`
	Properties []apiEnumField  `json:"properties"`
	UI5        *apiUI5Metadata `json:"ui5-metadata"`
}

type apiEnumField struct {
	apiMeta
}

type apiUI5Metadata struct {
	DefaultAggregation string           `json:"defaultAggregation"`
	Properties         []apiProperty    `json:"properties"`
	Aggregations       []apiAggregation `json:"aggregations"`
	Associations       []apiAssociation `json:"associations"`
	Events             []apiMeta        `json:"events"`
}

type apiProperty struct {
	apiMeta
	Type         string `json:"type"`
	DefaultValue any    `json:"defaultValue"`
}

type apiAggregation struct {
	apiMeta
	Type        string   `json:"type"`
	AltTypes    []string `json:"altTypes"`
	Cardinality string   `json:"cardinality"`
}

type apiAssociation struct {
	apiMeta
	Type        string `json:"type"`
	Cardinality string `json:"cardinality"`
}

// decodeLibrary reads one api.json document.
func decodeLibrary(r io.Reader) (*apiLibrary, error) {
	var lib apiLibrary
	if err := json.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("decoding api.json: %w", err)
	}
	if lib.Library == "" && lib.Symbols == nil {
		return nil, fmt.Errorf("%w: no library or symbols", ErrUnsupportedFormat)
	}
	return &lib, nil
}

// addTo registers the symbols of lib with b.
func (lib *apiLibrary) addTo(b *model.Builder) {
	for _, s := range lib.Symbols {
		meta := lib.meta(s.apiMeta)
		switch s.Kind {
		case "class":
			c := &model.Class{
				Meta:       meta,
				FQN:        s.Name,
				Extends:    s.Extends,
				Implements: s.Implements,
				Abstract:   s.Abstract,
			}
			c.Name = model.LastSegment(s.Name)
			if s.UI5 != nil {
				lib.addMembers(c, s.UI5)
			}
			b.AddClass(c)
		case "interface":
			b.AddInterface(&model.Interface{Meta: lib.named(meta, s.Name), FQN: s.Name})
		case "enum":
			e := &model.Enum{Meta: lib.named(meta, s.Name), FQN: s.Name}
			for _, f := range s.Properties {
				e.Values = append(e.Values, &model.EnumValue{Meta: lib.meta(f.apiMeta), Enum: s.Name})
			}
			b.AddEnum(e)
		case "typedef":
			b.AddTypedef(&model.Typedef{Meta: lib.named(meta, s.Name), FQN: s.Name})
		case "namespace":
			b.AddNamespace(&model.Namespace{Meta: lib.named(meta, s.Name), FQN: s.Name})
		}
	}
}

func (lib *apiLibrary) addMembers(c *model.Class, md *apiUI5Metadata) {
	c.DefaultAggregation = md.DefaultAggregation
	for _, p := range md.Properties {
		c.Properties = append(c.Properties, &model.Property{
			Meta:    lib.meta(p.apiMeta),
			Type:    model.ParseType(p.Type),
			Default: defaultString(p.DefaultValue),
		})
	}
	for _, a := range md.Aggregations {
		agg := &model.Aggregation{
			Meta:        lib.meta(a.apiMeta),
			Type:        model.ParseType(a.Type),
			Cardinality: cardinality(a.Cardinality),
		}
		for _, alt := range a.AltTypes {
			agg.AltTypes = append(agg.AltTypes, model.ParseType(alt))
		}
		c.Aggregations = append(c.Aggregations, agg)
	}
	for _, a := range md.Associations {
		c.Associations = append(c.Associations, &model.Association{
			Meta:        lib.meta(a.apiMeta),
			Type:        model.ParseType(a.Type),
			Cardinality: cardinality(a.Cardinality),
		})
	}
	for _, e := range md.Events {
		c.Events = append(c.Events, &model.Event{Meta: lib.meta(e)})
	}
}

func (lib *apiLibrary) meta(m apiMeta) model.Meta {
	return model.Meta{
		Name:         m.Name,
		Description:  m.Description,
		Since:        m.Since,
		Library:      lib.Library,
		Visibility:   model.ParseVisibility(m.Visibility),
		Deprecated:   status(m.Deprecated),
		Experimental: status(m.Experimental),
	}
}

// named replaces the fully-qualified name api.json uses for top-level
// symbols with the simple name.
func (lib *apiLibrary) named(m model.Meta, fqn string) model.Meta {
	m.Name = model.LastSegment(fqn)
	return m
}

func status(s *apiStatus) *model.Status {
	if s == nil {
		return nil
	}
	return &model.Status{Since: s.Since, Text: s.Text}
}

func cardinality(s string) model.Cardinality {
	if s == string(model.CardinalitySingle) {
		return model.CardinalitySingle
	}
	return model.CardinalityMultiple
}

func defaultString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
