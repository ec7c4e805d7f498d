package completion

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/ui5test"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

const cursor = "⇶"

// view wraps body in a root view declaring mvc and the default sap.m
// namespace.
func view(body string) string {
	return `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">` + body + `</mvc:View>`
}

func parse(t *testing.T, text string) (*xmldoc.Document, int) {
	t.Helper()
	off := strings.Index(text, cursor)
	require.GreaterOrEqual(t, off, 0, "missing cursor marker")
	return xmldoc.Parse(strings.Replace(text, cursor, "", 1)), off
}

func suggest(t *testing.T, text string, settings Settings) []Suggestion {
	t.Helper()
	doc, off := parse(t, text)
	return NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model(), Settings: settings})
}

func suggestWithService(t *testing.T, text string) []Suggestion {
	t.Helper()
	svc, err := odata.LoadEDMXFile("../odata/testdata/travel.xml")
	require.NoError(t, err)
	doc, off := parse(t, text)
	return NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model(), Service: svc})
}

func labels(ss []Suggestion) []string {
	var out []string
	for _, s := range ss {
		out = append(out, s.Label())
	}
	return out
}

func ofKind(ss []Suggestion, k Kind) []Suggestion {
	var out []Suggestion
	for _, s := range ss {
		if s.Kind == k {
			out = append(out, s)
		}
	}
	return out
}

func TestAggregationsInEmptyTag(t *testing.T) {
	got := suggest(t, view(`<Page><`+cursor+`</Page>`), Settings{})

	aggs := ofKind(got, KindAggregationInTagName)
	assert.Subset(t, labels(aggs), []string{"content", "footer"})
	for _, s := range aggs {
		require.NotNil(t, s.Element.Parent)
		assert.Equal(t, "Page", s.Element.Parent.Name)
	}
	// The default aggregation makes controls eligible too.
	assert.Contains(t, labels(ofKind(got, KindClassInTagName)), "Button")
}

func TestAggregationsSubstringFilter(t *testing.T) {
	got := suggest(t, view(`<Button><Data`+cursor+`</Button>`), Settings{})
	assert.Equal(t, []string{"customData", "layoutData"}, labels(got))
	for _, s := range got {
		assert.Equal(t, KindAggregationInTagName, s.Kind)
	}
}

func TestAggregationsExcludePresentSiblings(t *testing.T) {
	got := suggest(t, view(`<Page><footer/><content/><`+cursor+`</Page>`), Settings{})
	names := labels(ofKind(got, KindAggregationInTagName))
	assert.NotContains(t, names, "footer")
	assert.NotContains(t, names, "content")
	assert.Contains(t, names, "subHeader")

	// The element being edited is not a sibling of itself.
	got = suggest(t, view(`<Page><foo`+cursor+`ter/></Page>`), Settings{})
	assert.Contains(t, labels(ofKind(got, KindAggregationInTagName)), "footer")
}

func TestAggregationsNeverQualified(t *testing.T) {
	got := suggest(t, view(`<Page><mvc:con`+cursor+`</Page>`), Settings{})
	assert.Empty(t, ofKind(got, KindAggregationInTagName))
}

func TestClassesSingleCardinalityClosed(t *testing.T) {
	const header = `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:f="sap.f">`
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "empty 0..1 aggregation",
			body: `<f:DynamicPage><f:title><` + cursor + `</f:title></f:DynamicPage>`,
			want: []string{"DynamicPageTitle"},
		},
		{
			name: "occupied 0..1 aggregation",
			body: `<f:DynamicPage><f:title><f:DynamicPageTitle/><` + cursor + `</f:title></f:DynamicPage>`,
		},
		{
			name: "occupied 0..1 default aggregation",
			body: `<f:DynamicPageTitle><f:actions/><Text xmlns="sap.m"/><` + cursor + `</f:DynamicPageTitle>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggest(t, header+tt.body+`</mvc:View>`, Settings{})
			assert.Equal(t, tt.want, labels(ofKind(got, KindClassInTagName)))
		})
	}
}

func TestClassesByInterface(t *testing.T) {
	got := suggest(t, view(`<Page><customHeader><`+cursor+`</customHeader></Page>`), Settings{})
	assert.Equal(t, []string{"Bar", "OverflowToolbar", "Toolbar"}, labels(got))
}

func TestClassesNamespaceFilter(t *testing.T) {
	text := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:core="sap.ui.core"><Page><core:Ic` + cursor + `</Page></mvc:View>`
	got := suggest(t, text, Settings{})
	assert.Equal(t, []string{"Icon"}, labels(got))

	got = suggest(t, view(`<Page><nope:Bu`+cursor+`</Page>`), Settings{})
	assert.Empty(t, got)
}

func TestClassesAtRoot(t *testing.T) {
	got := suggest(t, `<`+cursor, Settings{})
	names := labels(got)
	assert.Contains(t, names, "Page")
	assert.Contains(t, names, "XMLView")
	assert.NotContains(t, names, "Control", "abstract classes are never offered")
	assert.NotContains(t, names, "CustomData", "root must be a control")
}

func TestSettingsFilter(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		settings Settings
		want     []string
	}{
		{"deprecated hidden", `<DateTime` + cursor, Settings{}, nil},
		{"deprecated shown", `<DateTime` + cursor, Settings{Deprecated: true}, []string{"DateTimeInput"}},
		{"experimental hidden", `<ColumnHeader` + cursor, Settings{}, nil},
		{"experimental shown", `<ColumnHeader` + cursor, Settings{Experimental: true}, []string{"ColumnHeaderPopover"}},
		{"restricted never shown", `<TablePop` + cursor, Settings{Deprecated: true, Experimental: true}, nil},
		{"deprecated enum value", view(`<Button type="Unst` + cursor + `"/>`), Settings{}, nil},
		{"deprecated enum value shown", view(`<Button type="Unst` + cursor + `"/>`), Settings{Deprecated: true}, []string{"Unstyled"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels(suggest(t, tt.text, tt.settings)))
		})
	}
}

func TestMembersInAttributeKey(t *testing.T) {
	t.Run("existing attributes excluded", func(t *testing.T) {
		got := suggest(t, view(`<Button busy="true" `+cursor+`/>`), Settings{})
		names := labels(got)
		assert.NotContains(t, names, "busy")
		assert.Subset(t, names, []string{"text", "press", "ariaDescribedBy", "ariaLabelledBy", "visible"})
		for _, s := range got {
			assert.Equal(t, KindPropEventAssocInAttributeKey, s.Kind)
		}
	})

	t.Run("edited attribute included", func(t *testing.T) {
		got := suggest(t, view(`<Button bu`+cursor+`sy="true"/>`), Settings{})
		assert.Equal(t, []string{"busy", "busyIndicatorDelay"}, labels(got))
	})

	t.Run("own members first", func(t *testing.T) {
		got := suggest(t, view(`<Button `+cursor+`/>`), Settings{})
		names := labels(got)
		require.NotEmpty(t, names)
		assert.Equal(t, "text", names[0])
		assert.Less(t, slices.Index(names, "enabled"), slices.Index(names, "busy"))
	})

	t.Run("unknown class", func(t *testing.T) {
		assert.Empty(t, suggest(t, view(`<Nope `+cursor+`/>`), Settings{}))
	})
}

func TestBooleanValues(t *testing.T) {
	doc, off := parse(t, view(`<Button busy="`+cursor+`"/>`))
	got := NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model()})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"true", "false"}, labels(got))
	for _, s := range got {
		assert.Equal(t, KindBooleanValueInAttributeValue, s.Kind)
		item := Render(doc, off, s)
		assert.Equal(t, xmldoc.Span{Start: off, End: off}, item.Edit.Span, "replaces the empty quoted value")
		assert.Equal(t, s.Label(), item.Edit.NewText)
	}

	assert.Equal(t, []string{"false"}, labels(suggest(t, view(`<Button busy="fa`+cursor+`"/>`), Settings{})))
	assert.Empty(t, suggest(t, view(`<Button busy="{`+cursor+`"/>`), Settings{}), "bindings are not completed")
	assert.Empty(t, suggest(t, view(`<Button text="`+cursor+`"/>`), Settings{}))
}

func TestEnumValues(t *testing.T) {
	got := suggest(t, view(`<Button type="`+cursor+`"/>`), Settings{})
	assert.Equal(t, []string{"Default", "Back", "Accept", "Reject", "Transparent", "Emphasized", "Up"}, labels(got))

	got = suggest(t, view(`<Button type="ject`+cursor+`"/>`), Settings{})
	assert.Equal(t, []string{"Reject"}, labels(got))
	assert.Equal(t, KindEnumValueInAttributeValue, got[0].Kind)
}

func TestNamespacesInAttributeKey(t *testing.T) {
	got := suggest(t, view(`<Page xmlns:f`+cursor+`/>`), Settings{})
	assert.Empty(t, got, "only the root view declares namespaces")

	text := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:f` + cursor + `></mvc:View>`
	doc, off := parse(t, text)
	got = NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model()})
	assert.Equal(t, []string{"sap.f", "sap.ui.layout.form"}, labels(got))

	item := Render(doc, off, got[0])
	assert.Equal(t, `xmlns:f="sap.f"`, item.Edit.NewText)

	got = suggest(t, `<mvc:View xmlns:mvc="sap.ui.core.mvc" `+cursor+`></mvc:View>`, Settings{})
	names := labels(ofKind(got, KindNamespaceInAttributeKey))
	assert.NotContains(t, names, "sap.ui.core.mvc", "declared namespaces are excluded")
	assert.Contains(t, names, "sap.m")
}

func TestNamespacesInAttributeValue(t *testing.T) {
	got := suggest(t, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:m="`+cursor+`"/>`, Settings{})
	assert.Equal(t, []string{"sap.m"}, labels(got))

	got = suggest(t, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:zz="`+cursor+`"/>`, Settings{})
	assert.Equal(t, []string{
		"sap.f",
		"sap.fe.macros",
		"sap.m",
		"sap.m.semantic",
		"sap.ui.core",
		"sap.ui.core.mvc",
		"sap.ui.layout.form",
	}, labels(got))

	got = suggest(t, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:x="sap.ui.`+cursor+`"/>`, Settings{})
	assert.Equal(t, []string{"sap.ui.core", "sap.ui.layout"}, labels(got))

	got = suggest(t, `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:x="semant`+cursor+`"/>`, Settings{})
	assert.Equal(t, []string{"sap.m.semantic"}, labels(got))
}

const macrosView = `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:macros="sap.fe.macros">`

func TestAnnotationPaths(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "chart contextPath",
			body: `<macros:Chart contextPath="/Tr` + cursor + `"/>`,
			want: []string{"/Travel", "/Travel/to_Booking"},
		},
		{
			name: "chart metaPath",
			body: `<macros:Chart contextPath="/Travel" metaPath="` + cursor + `"/>`,
			want: []string{"@com.sap.vocabularies.UI.v1.Chart#ByPrice", "to_Booking/@com.sap.vocabularies.UI.v1.Chart"},
		},
		{
			name: "field property path",
			body: `<macros:Field contextPath="/Booking" metaPath="to_C` + cursor + `"/>`,
			want: []string{"to_Carrier/AirlineID", "to_Carrier/Name"},
		},
		{
			name: "unresolved contextPath",
			body: `<macros:Chart contextPath="/Nope" metaPath="` + cursor + `"/>`,
		},
		{
			name: "not a building block property",
			body: `<macros:Chart id="` + cursor + `"/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestWithService(t, macrosView+tt.body+`</mvc:View>`)
			assert.Equal(t, tt.want, labels(got))
			for _, s := range got {
				assert.Equal(t, KindAnnotationPathInAttributeValue, s.Kind)
			}
		})
	}

	assert.Empty(t, suggest(t, macrosView+`<macros:Chart contextPath="`+cursor+`"/></mvc:View>`, Settings{}), "no service metadata")
}

func TestFilterBarIDs(t *testing.T) {
	body := `<macros:FilterBar id="fbMain"/><macros:FilterBar id="fbSide"/><macros:FilterBar/>`
	got := suggest(t, macrosView+body+`<macros:Table filterBar="`+cursor+`"/></mvc:View>`, Settings{})
	assert.Equal(t, []string{"fbMain", "fbSide"}, labels(got))
	for _, s := range got {
		assert.Equal(t, KindFilterBarIDInAttributeValue, s.Kind)
	}

	got = suggest(t, macrosView+body+`<macros:Chart filterBar="Side`+cursor+`"/></mvc:View>`, Settings{})
	assert.Equal(t, []string{"fbSide"}, labels(got))

	got = suggest(t, macrosView+body+`<macros:Field filterBar="`+cursor+`"/></mvc:View>`, Settings{})
	assert.Empty(t, got)
}

func applyEdits(text string, edits []Edit) string {
	slices.SortFunc(edits, func(a, b Edit) int { return b.Span.Start - a.Span.Start })
	for _, e := range edits {
		text = text[:e.Span.Start] + e.NewText + text[e.Span.End:]
	}
	return text
}

func TestRenderClassImportsNamespace(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
		want  string
	}{
		{
			name:  "fresh alias",
			text:  view(`<Page><DynamicPageH` + cursor + `</Page>`),
			label: "DynamicPageHeader",
			want:  `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:f="sap.f"><Page><f:DynamicPageHeader</Page></mvc:View>`,
		},
		{
			name:  "alias collision",
			text:  `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:f="my.f"><Page><DynamicPageH` + cursor + `</Page></mvc:View>`,
			label: "DynamicPageHeader",
			want:  `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:f="my.f" xmlns:f2="sap.f"><Page><f2:DynamicPageHeader</Page></mvc:View>`,
		},
		{
			name:  "default namespace",
			text:  view(`<Page><Butt` + cursor + `</Page>`),
			label: "Button",
			want:  view(`<Page><Button</Page>`),
		},
		{
			name:  "declared prefix",
			text:  `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:m="sap.m"><m:Page><Butt` + cursor + `</m:Page></mvc:View>`,
			label: "Button",
			want:  `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:m="sap.m"><m:Page><m:Button</m:Page></mvc:View>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, off := parse(t, tt.text)
			got := NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model()})
			i := slices.IndexFunc(got, func(s Suggestion) bool { return s.Label() == tt.label })
			require.GreaterOrEqual(t, i, 0, "missing %s in %v", tt.label, labels(got))

			item := Render(doc, off, got[i])
			assert.Equal(t, xmldoc.Span{Start: item.Edit.Span.Start, End: off}, item.Insert)
			edits := append([]Edit{item.Edit}, item.Additional...)
			assert.Equal(t, tt.want, applyEdits(doc.Text, edits))
		})
	}
}

func TestRenderKeysAndAggregations(t *testing.T) {
	doc, off := parse(t, view(`<Button `+cursor+`/>`))
	got := NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model()})
	require.NotEmpty(t, got)
	item := Render(doc, off, got[0])
	assert.Equal(t, Edit{Span: xmldoc.Span{Start: off, End: off}, NewText: `text=""`}, item.Edit)

	doc, off = parse(t, view(`<Button ico`+cursor+`n="a"/>`))
	got = NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model()})
	require.Equal(t, []string{"icon"}, labels(got))
	item = Render(doc, off, got[0])
	assert.Equal(t, "icon", item.Edit.NewText, "an existing value is kept")
	assert.Equal(t, off-3, item.Insert.Start)
	assert.Equal(t, off, item.Insert.End)
	assert.Equal(t, off+1, item.Edit.Span.End)

	text := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:m="sap.m"><m:Page><foot` + cursor + `</m:Page></mvc:View>`
	doc, off = parse(t, text)
	got = ofKind(NewEngine().Suggest(Request{Document: doc, Offset: off, Model: ui5test.Model()}), KindAggregationInTagName)
	require.Equal(t, []string{"footer"}, labels(got))
	assert.Equal(t, "m:footer", Render(doc, off, got[0]).Edit.NewText)
}

func TestSuggestOutsideAnyToken(t *testing.T) {
	assert.Empty(t, suggest(t, view(`<Page>`+cursor+`</Page>`), Settings{}))
	assert.Empty(t, suggest(t, cursor+`<Page/>`, Settings{}))
}
