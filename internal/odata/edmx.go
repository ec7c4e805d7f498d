package odata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoSchema is returned when an EDMX document has no schema.
var ErrNoSchema = errors.New("edmx: no schema found")

type edmxDocument struct {
	References   []edmxReference `xml:"Reference"`
	DataServices struct {
		Schemas []edmxSchema `xml:"Schema"`
	} `xml:"DataServices"`
}

type edmxReference struct {
	Includes []struct {
		Namespace string `xml:"Namespace,attr"`
		Alias     string `xml:"Alias,attr"`
	} `xml:"Include"`
}

type edmxSchema struct {
	Namespace   string                `xml:"Namespace,attr"`
	Alias       string                `xml:"Alias,attr"`
	EntityTypes []edmxEntityType      `xml:"EntityType"`
	Containers  []edmxEntityContainer `xml:"EntityContainer"`
	Annotations []edmxAnnotations     `xml:"Annotations"`
}

type edmxEntityType struct {
	Name string `xml:"Name,attr"`
	Key  struct {
		PropertyRefs []struct {
			Name string `xml:"Name,attr"`
		} `xml:"PropertyRef"`
	} `xml:"Key"`
	Properties []struct {
		Name        string           `xml:"Name,attr"`
		Type        string           `xml:"Type,attr"`
		Annotations []edmxAnnotation `xml:"Annotation"`
	} `xml:"Property"`
	NavigationProperties []struct {
		Name    string `xml:"Name,attr"`
		Type    string `xml:"Type,attr"`
		Partner string `xml:"Partner,attr"`
	} `xml:"NavigationProperty"`
	Annotations []edmxAnnotation `xml:"Annotation"`
}

type edmxEntityContainer struct {
	Name       string `xml:"Name,attr"`
	EntitySets []struct {
		Name       string `xml:"Name,attr"`
		EntityType string `xml:"EntityType,attr"`
	} `xml:"EntitySet"`
	Singletons []struct {
		Name string `xml:"Name,attr"`
		Type string `xml:"Type,attr"`
	} `xml:"Singleton"`
}

type edmxAnnotations struct {
	Target      string           `xml:"Target,attr"`
	Qualifier   string           `xml:"Qualifier,attr"`
	Annotations []edmxAnnotation `xml:"Annotation"`
}

type edmxAnnotation struct {
	Term      string `xml:"Term,attr"`
	Qualifier string `xml:"Qualifier,attr"`
}

// LoadEDMX reads an OData V4 $metadata document.
func LoadEDMX(r io.Reader) (*Metadata, error) {
	var doc edmxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("edmx: %w", err)
	}
	schemas := doc.DataServices.Schemas
	if len(schemas) == 0 {
		return nil, ErrNoSchema
	}

	md := New(schemas[0].Namespace)
	for _, ref := range doc.References {
		for _, inc := range ref.Includes {
			if inc.Alias != "" {
				md.Aliases[inc.Alias] = inc.Namespace
			}
		}
	}
	for _, s := range schemas {
		if s.Alias != "" {
			md.Aliases[s.Alias] = s.Namespace
		}
	}

	// Entity types first so that annotations and containers can refer to
	// them regardless of declaration order.
	for _, s := range schemas {
		for _, et := range s.EntityTypes {
			t := md.AddEntityType(s.Namespace, et.Name)
			for _, k := range et.Key.PropertyRefs {
				t.Keys = append(t.Keys, k.Name)
			}
			for _, p := range et.Properties {
				t.AddProperty(p.Name, p.Type)
				for _, a := range p.Annotations {
					md.Annotate(t.FQN+"/"+p.Name, a.Term, a.Qualifier)
				}
			}
			for _, n := range et.NavigationProperties {
				target, collection := parseNavigationType(n.Type)
				nav := t.AddNavigation(n.Name, md.resolveAlias(target), collection)
				nav.Partner = n.Partner
			}
			for _, a := range et.Annotations {
				md.Annotate(t.FQN, a.Term, a.Qualifier)
			}
		}
	}

	for _, s := range schemas {
		for _, c := range s.Containers {
			if md.Container != nil {
				continue
			}
			md.Namespace = s.Namespace
			container := md.NewContainer(c.Name)
			for _, es := range c.EntitySets {
				container.AddEntitySet(es.Name, md.resolveAlias(es.EntityType))
			}
			for _, sg := range c.Singletons {
				container.AddSingleton(sg.Name, md.resolveAlias(sg.Type))
			}
		}
		for _, group := range s.Annotations {
			for _, a := range group.Annotations {
				qualifier := a.Qualifier
				if qualifier == "" {
					qualifier = group.Qualifier
				}
				md.Annotate(group.Target, a.Term, qualifier)
			}
		}
	}
	return md, nil
}

// LoadEDMXFile reads an OData V4 $metadata document from disk.
func LoadEDMXFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	md, err := LoadEDMX(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return md, nil
}

// parseNavigationType unwraps Collection(T).
func parseNavigationType(typ string) (string, bool) {
	if inner, ok := strings.CutPrefix(typ, "Collection("); ok {
		return strings.TrimSuffix(inner, ")"), true
	}
	return typ, false
}

func (md *Metadata) resolveAlias(fqn string) string {
	i := strings.LastIndexByte(fqn, '.')
	if i < 0 {
		return fqn
	}
	if ns, ok := md.Aliases[fqn[:i]]; ok {
		return ns + fqn[i:]
	}
	return fqn
}
