package macros

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/ui5test"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

func TestOf(t *testing.T) {
	m := ui5test.Model()
	tests := []struct {
		tag    string
		want   bool
		collection bool
	}{
		{"macros:Table", true, true},
		{"macros:Chart", true, false},
		{"macros:Field", true, false},
		{"m:Button", false, false},
		{"macros:Unknown", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			doc := xmldoc.Parse(`<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:m="sap.m" xmlns:macros="sap.fe.macros"><` + tt.tag + `/></mvc:View>`)
			bb, ok := Of(doc.Root.SubElements[0], m)
			if ok != tt.want {
				t.Fatalf("Of(%s) ok = %v, want %v", tt.tag, ok, tt.want)
			}
			if bb.Collection != tt.collection {
				t.Errorf("Of(%s).Collection = %v, want %v", tt.tag, bb.Collection, tt.collection)
			}
		})
	}
}

func TestPathOptions(t *testing.T) {
	table := BuildingBlocks["sap.fe.macros.Table"]
	opts := table.ContextPathOptions()
	if opts.IsCollection == nil || !*opts.IsCollection {
		t.Error("table contextPath must address a collection")
	}
	if diff := cmp.Diff([]odata.Kind{odata.KindAnnotation}, table.MetaPathOptions().AllowedTargets); diff != "" {
		t.Errorf("table metaPath targets mismatch (-want +got):\n%s", diff)
	}

	field := BuildingBlocks["sap.fe.macros.Field"].MetaPathOptions()
	if !field.IsPropertyPath {
		t.Error("field metaPath must be a property path")
	}
	if diff := cmp.Diff([]odata.Kind{odata.KindProperty}, field.AllowedTargets); diff != "" {
		t.Errorf("field metaPath targets mismatch (-want +got):\n%s", diff)
	}

	if opts := BuildingBlocks["sap.fe.macros.Chart"].ContextPathOptions(); opts.IsCollection != nil {
		t.Errorf("chart contextPath collection constraint = %v, want none", *opts.IsCollection)
	}
}
