// Package ui5test provides a small but representative framework model for
// tests. It mirrors the shape of the real sap.ui.core / sap.m / sap.f /
// sap.fe.macros libraries closely enough to exercise inheritance, default
// aggregations, interfaces, enums, and deprecated, experimental and
// restricted symbols.
package ui5test

import (
	"sync"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
)

var (
	once    sync.Once
	shared  *model.Model
	initErr error
)

// Model returns the shared fixture model. It panics if the fixture is
// inconsistent, which indicates a bug in this package.
func Model() *model.Model {
	once.Do(func() {
		shared, initErr = Build()
	})
	if initErr != nil {
		panic(initErr)
	}
	return shared
}

func agg(name, typ string, card model.Cardinality) *model.Aggregation {
	return &model.Aggregation{Meta: model.Meta{Name: name}, Type: model.ParseType(typ), Cardinality: card}
}

func prop(name, typ string) *model.Property {
	return &model.Property{Meta: model.Meta{Name: name}, Type: model.ParseType(typ)}
}

func event(name string) *model.Event {
	return &model.Event{Meta: model.Meta{Name: name}}
}

func assoc(name, typ string, card model.Cardinality) *model.Association {
	return &model.Association{Meta: model.Meta{Name: name}, Type: model.ParseType(typ), Cardinality: card}
}

func enum(fqn string, values ...string) *model.Enum {
	e := &model.Enum{FQN: fqn}
	for _, v := range values {
		e.Values = append(e.Values, &model.EnumValue{Meta: model.Meta{Name: v}})
	}
	return e
}

const (
	single   = model.CardinalitySingle
	multiple = model.CardinalityMultiple
)

// Build constructs a fresh fixture model.
func Build() (*model.Model, error) {
	b := model.NewBuilder("SAPUI5", "1.120.0")

	b.AddClass(&model.Class{
		FQN:        "sap.ui.base.ManagedObject",
		Meta:       model.Meta{Library: "sap.ui.core", Description: "Base class that introduces some basic concepts."},
		Properties: []*model.Property{prop("models", "object")},
		Events:     []*model.Event{event("modelContextChange")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.ui.core.Element",
		Meta:    model.Meta{Library: "sap.ui.core", Description: "Base class for UI elements."},
		Extends: "sap.ui.base.ManagedObject",
		Aggregations: []*model.Aggregation{
			agg("customData", "sap.ui.core.CustomData", multiple),
			agg("layoutData", "sap.ui.core.LayoutData", single),
			agg("dependents", "sap.ui.core.Element", multiple),
		},
		Properties: []*model.Property{prop("fieldGroupIds", "string[]")},
	})
	b.AddClass(&model.Class{
		FQN:        "sap.ui.core.Control",
		Meta:       model.Meta{Library: "sap.ui.core", Description: "Base class for controls."},
		Extends:    "sap.ui.core.Element",
		Abstract:   true,
		Properties: []*model.Property{prop("busy", "boolean"), prop("visible", "boolean"), prop("busyIndicatorDelay", "int")},
		Events:     []*model.Event{event("validateFieldGroup")},
		Associations: []*model.Association{
			assoc("ariaLabelledBy", "sap.ui.core.Control", multiple),
		},
	})
	b.AddClass(&model.Class{
		FQN:        "sap.ui.core.CustomData",
		Meta:       model.Meta{Library: "sap.ui.core"},
		Extends:    "sap.ui.core.Element",
		Properties: []*model.Property{prop("key", "string"), prop("value", "any")},
	})
	b.AddClass(&model.Class{
		FQN:      "sap.ui.core.LayoutData",
		Meta:     model.Meta{Library: "sap.ui.core"},
		Extends:  "sap.ui.core.Element",
		Abstract: true,
	})
	b.AddClass(&model.Class{
		FQN:        "sap.ui.core.Icon",
		Meta:       model.Meta{Library: "sap.ui.core", Description: "Icon uses embedded font instead of pixel image."},
		Extends:    "sap.ui.core.Control",
		Properties: []*model.Property{prop("src", "sap.ui.core.URI"), prop("size", "sap.ui.core.CSSSize"), prop("color", "string")},
		Events:     []*model.Event{event("press")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.ui.core.FragmentDefinition",
		Meta:    model.Meta{Library: "sap.ui.core"},
		Extends: "sap.ui.base.ManagedObject",
	})
	b.AddClass(&model.Class{
		FQN:                "sap.ui.core.mvc.View",
		Meta:               model.Meta{Library: "sap.ui.core", Description: "A base class for Views."},
		Extends:            "sap.ui.core.Control",
		Abstract:           true,
		DefaultAggregation: "content",
		Aggregations:       []*model.Aggregation{agg("content", "sap.ui.core.Control", multiple)},
		Properties:         []*model.Property{prop("displayBlock", "boolean"), prop("height", "sap.ui.core.CSSSize"), prop("viewName", "string")},
		Events:             []*model.Event{event("afterInit"), event("beforeExit")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.ui.core.mvc.XMLView",
		Meta:    model.Meta{Library: "sap.ui.core"},
		Extends: "sap.ui.core.mvc.View",
	})
	b.AddTypedef(&model.Typedef{FQN: "sap.ui.core.CSSSize", Meta: model.Meta{Library: "sap.ui.core"}})
	b.AddTypedef(&model.Typedef{FQN: "sap.ui.core.URI", Meta: model.Meta{Library: "sap.ui.core"}})
	b.AddEnum(enum("sap.ui.core.ValueState", "Error", "Warning", "Success", "Information", "None"))
	b.AddEnum(enum("sap.ui.core.TitleLevel", "Auto", "H1", "H2", "H3", "H4", "H5", "H6"))

	// sap.m
	b.AddInterface(&model.Interface{FQN: "sap.m.IBar", Meta: model.Meta{Library: "sap.m"}})
	buttonType := enum("sap.m.ButtonType", "Default", "Back", "Accept", "Reject", "Transparent", "Emphasized", "Up", "Unstyled")
	buttonType.Values[7].Deprecated = &model.Status{Since: "1.28.0", Text: "Unstyled buttons are not supported anymore."}
	b.AddEnum(buttonType)
	b.AddEnum(enum("sap.m.PageBackgroundDesign", "Standard", "List", "Solid", "Transparent"))
	b.AddEnum(enum("sap.m.ListMode", "None", "SingleSelect", "MultiSelect", "Delete"))
	b.AddClass(&model.Class{
		FQN:                "sap.m.Page",
		Meta:               model.Meta{Library: "sap.m", Description: "A container control that holds one whole screen of an application.", Since: "1.0"},
		Extends:            "sap.ui.core.Control",
		DefaultAggregation: "content",
		Aggregations: []*model.Aggregation{
			agg("content", "sap.ui.core.Control", multiple),
			agg("customHeader", "sap.m.IBar", single),
			agg("subHeader", "sap.m.IBar", single),
			agg("footer", "sap.m.IBar", single),
			agg("headerContent", "sap.ui.core.Control", multiple),
		},
		Properties: []*model.Property{
			prop("title", "string"),
			prop("titleLevel", "sap.ui.core.TitleLevel"),
			prop("showHeader", "boolean"),
			prop("showNavButton", "boolean"),
			prop("enableScrolling", "boolean"),
			prop("backgroundDesign", "sap.m.PageBackgroundDesign"),
		},
		Events: []*model.Event{event("navButtonPress")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.Button",
		Meta:    model.Meta{Library: "sap.m", Description: "Enables users to trigger actions."},
		Extends: "sap.ui.core.Control",
		Properties: []*model.Property{
			prop("text", "string"),
			prop("type", "sap.m.ButtonType"),
			prop("enabled", "boolean"),
			prop("icon", "sap.ui.core.URI"),
			prop("width", "sap.ui.core.CSSSize"),
		},
		Events:       []*model.Event{event("press")},
		Associations: []*model.Association{assoc("ariaDescribedBy", "sap.ui.core.Control", multiple)},
	})
	b.AddClass(&model.Class{
		FQN:        "sap.m.ToggleButton",
		Meta:       model.Meta{Library: "sap.m"},
		Extends:    "sap.m.Button",
		Properties: []*model.Property{prop("pressed", "boolean")},
	})
	b.AddClass(&model.Class{
		FQN:        "sap.m.Text",
		Meta:       model.Meta{Library: "sap.m"},
		Extends:    "sap.ui.core.Control",
		Properties: []*model.Property{prop("text", "string"), prop("wrapping", "boolean")},
	})
	b.AddClass(&model.Class{
		FQN:          "sap.m.Label",
		Meta:         model.Meta{Library: "sap.m"},
		Extends:      "sap.ui.core.Control",
		Properties:   []*model.Property{prop("text", "string"), prop("required", "boolean")},
		Associations: []*model.Association{assoc("labelFor", "sap.ui.core.Control", single)},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.Input",
		Meta:    model.Meta{Library: "sap.m"},
		Extends: "sap.ui.core.Control",
		Properties: []*model.Property{
			prop("value", "string"),
			prop("valueState", "sap.ui.core.ValueState"),
			prop("editable", "boolean"),
		},
		Events: []*model.Event{event("change"), event("liveChange")},
	})
	b.AddClass(&model.Class{
		FQN:        "sap.m.Bar",
		Meta:       model.Meta{Library: "sap.m"},
		Extends:    "sap.ui.core.Control",
		Implements: []string{"sap.m.IBar"},
		Aggregations: []*model.Aggregation{
			agg("contentLeft", "sap.ui.core.Control", multiple),
			agg("contentMiddle", "sap.ui.core.Control", multiple),
			agg("contentRight", "sap.ui.core.Control", multiple),
		},
	})
	b.AddClass(&model.Class{
		FQN:                "sap.m.Toolbar",
		Meta:               model.Meta{Library: "sap.m"},
		Extends:            "sap.ui.core.Control",
		Implements:         []string{"sap.m.IBar"},
		DefaultAggregation: "content",
		Aggregations:       []*model.Aggregation{agg("content", "sap.ui.core.Control", multiple)},
		Properties:         []*model.Property{prop("active", "boolean")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.OverflowToolbar",
		Meta:    model.Meta{Library: "sap.m"},
		Extends: "sap.m.Toolbar",
	})
	b.AddClass(&model.Class{
		FQN:                "sap.m.Panel",
		Meta:               model.Meta{Library: "sap.m"},
		Extends:            "sap.ui.core.Control",
		DefaultAggregation: "content",
		Aggregations: []*model.Aggregation{
			agg("content", "sap.ui.core.Control", multiple),
			agg("headerToolbar", "sap.m.Toolbar", single),
			agg("infoToolbar", "sap.m.Toolbar", single),
		},
		Properties: []*model.Property{prop("headerText", "string"), prop("expandable", "boolean")},
	})
	b.AddClass(&model.Class{
		FQN:                "sap.m.ListBase",
		Meta:               model.Meta{Library: "sap.m"},
		Extends:            "sap.ui.core.Control",
		Abstract:           true,
		DefaultAggregation: "items",
		Aggregations: []*model.Aggregation{
			agg("items", "sap.m.ListItemBase", multiple),
			agg("headerToolbar", "sap.m.Toolbar", single),
		},
		Properties: []*model.Property{prop("mode", "sap.m.ListMode"), prop("headerText", "string")},
		Events:     []*model.Event{event("selectionChange")},
	})
	b.AddClass(&model.Class{FQN: "sap.m.List", Meta: model.Meta{Library: "sap.m"}, Extends: "sap.m.ListBase"})
	b.AddClass(&model.Class{
		FQN:      "sap.m.ListItemBase",
		Meta:     model.Meta{Library: "sap.m"},
		Extends:  "sap.ui.core.Control",
		Abstract: true,
	})
	b.AddClass(&model.Class{
		FQN:        "sap.m.StandardListItem",
		Meta:       model.Meta{Library: "sap.m"},
		Extends:    "sap.m.ListItemBase",
		Properties: []*model.Property{prop("title", "string"), prop("description", "string")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.DateTimeInput",
		Meta:    model.Meta{Library: "sap.m", Deprecated: &model.Status{Since: "1.32.8", Text: "Use sap.m.DatePicker instead."}},
		Extends: "sap.ui.core.Control",
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.ColumnHeaderPopover",
		Meta:    model.Meta{Library: "sap.m", Experimental: &model.Status{Since: "1.63"}},
		Extends: "sap.ui.core.Control",
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.TablePopin",
		Meta:    model.Meta{Library: "sap.m", Visibility: model.VisibilityRestricted},
		Extends: "sap.ui.core.Control",
	})
	b.AddClass(&model.Class{
		FQN:        "sap.m.FlexItemData",
		Meta:       model.Meta{Library: "sap.m"},
		Extends:    "sap.ui.core.LayoutData",
		Properties: []*model.Property{prop("growFactor", "float")},
	})
	b.AddClass(&model.Class{
		FQN:     "sap.m.semantic.SemanticPage",
		Meta:    model.Meta{Library: "sap.m"},
		Extends: "sap.ui.core.Control",
	})

	// sap.ui.layout: only its sub-namespace holds controls.
	b.AddClass(&model.Class{
		FQN:                "sap.ui.layout.form.SimpleForm",
		Meta:               model.Meta{Library: "sap.ui.layout"},
		Extends:            "sap.ui.core.Control",
		DefaultAggregation: "content",
		Aggregations:       []*model.Aggregation{agg("content", "sap.ui.core.Element", multiple)},
		Properties:         []*model.Property{prop("editable", "boolean")},
	})

	// sap.f
	b.AddClass(&model.Class{
		FQN:     "sap.f.DynamicPage",
		Meta:    model.Meta{Library: "sap.f"},
		Extends: "sap.ui.core.Control",
		Aggregations: []*model.Aggregation{
			agg("title", "sap.f.DynamicPageTitle", single),
			agg("header", "sap.f.DynamicPageHeader", single),
			agg("content", "sap.ui.core.Control", single),
			agg("footer", "sap.m.IBar", single),
		},
		Properties: []*model.Property{prop("showFooter", "boolean")},
	})
	b.AddClass(&model.Class{
		FQN:                "sap.f.DynamicPageTitle",
		Meta:               model.Meta{Library: "sap.f"},
		Extends:            "sap.ui.core.Control",
		DefaultAggregation: "heading",
		Aggregations:       []*model.Aggregation{agg("heading", "sap.ui.core.Control", single), agg("actions", "sap.ui.core.Control", multiple)},
	})
	b.AddClass(&model.Class{
		FQN:                "sap.f.DynamicPageHeader",
		Meta:               model.Meta{Library: "sap.f"},
		Extends:            "sap.ui.core.Control",
		DefaultAggregation: "content",
		Aggregations:       []*model.Aggregation{agg("content", "sap.ui.core.Control", multiple)},
		Properties:         []*model.Property{prop("pinnable", "boolean")},
	})

	// sap.fe.macros building blocks.
	for _, name := range []string{"Chart", "Table", "FilterBar", "Field", "MicroChart"} {
		c := &model.Class{
			FQN:        "sap.fe.macros." + name,
			Meta:       model.Meta{Library: "sap.fe.macros"},
			Extends:    "sap.ui.core.Control",
			Properties: []*model.Property{prop("contextPath", "string"), prop("metaPath", "string")},
		}
		if name == "Table" || name == "Chart" {
			c.Properties = append(c.Properties, prop("filterBar", "string"))
		}
		b.AddClass(c)
	}

	return b.Build()
}
