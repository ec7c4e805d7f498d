package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/ui5test"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

func view(body string) string {
	return `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m">` + body + `</mvc:View>`
}

func validate(text string, opts Options) []Diagnostic {
	return Validate(xmldoc.Parse(text), ui5test.Model(), opts)
}

func codesOf(diags []Diagnostic) []int {
	var out []int
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

// spanOf returns the span of the nth occurrence of needle in text.
func spanOf(t *testing.T, text, needle string, nth int) xmldoc.Span {
	t.Helper()
	off := 0
	for i := 0; ; i++ {
		idx := strings.Index(text[off:], needle)
		require.GreaterOrEqual(t, idx, 0, "%q occurrence %d not found", needle, nth)
		if i == nth {
			return xmldoc.Span{Start: off + idx, End: off + idx + len(needle)}
		}
		off += idx + len(needle)
	}
}

func TestValidViewHasNoDiagnostics(t *testing.T) {
	text := view(`<Page id="page" title="Home" showHeader="true"><content>` +
		`<Button text="{i18n>save}" type="Accept" enabled="false"/>` +
		`<Input valueState="Error" editable="{= !${busy} }"/>` +
		`</content><footer><OverflowToolbar/></footer></Page>`)
	assert.Empty(t, validate(text, Options{}))
}

func TestUnknownTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"class in namespace", view(`<Page><Buton/></Page>`), UnknownClassInNamespace},
		{"class without namespace", `<mvc:View xmlns:mvc="sap.ui.core.mvc"><Buton/></mvc:View>`, UnknownClassWithoutNamespace},
		{"aggregation in class", view(`<Page><contnt/></Page>`), UnknownAggregationInClass},
		{"aggregation in other namespace", view(`<Page xmlns:core="sap.ui.core"><core:content/></Page>`), UnknownAggregationInClassDiffNamespace},
		{"tag in class without namespace", `<mvc:View xmlns:mvc="sap.ui.core.mvc"><foo/></mvc:View>`, UnknownTagNameInClass},
		{"tag in namespace under class", view(`<Page xmlns:core="sap.ui.core"><core:foo/></Page>`), UnknownTagNameInNamespaceUnderClass},
		{"tag in namespace", view(`<Page><content><foo/></content></Page>`), UnknownTagNameInNamespace},
		{"tag without namespace", `<foo/>`, UnknownTagNameNoNamespace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validate(tt.text, Options{})
			require.Len(t, got, 1, "diagnostics: %+v", got)
			assert.Equal(t, tt.want, got[0].Kind)
			assert.Equal(t, tt.want.Code(), got[0].Code)
			assert.Equal(t, SeverityError, got[0].Severity)

			doc := xmldoc.Parse(tt.text)
			var name string
			doc.Walk(func(e *xmldoc.Element) bool {
				if e.NameSpan == got[0].Span {
					name = e.Name
				}
				return true
			})
			assert.NotEmpty(t, name, "span must cover a tag name")
		})
	}
}

func TestUnknownTagsOutsideModelAreIgnored(t *testing.T) {
	tests := []string{
		view(`<Page><x:Foo/></Page>`),
		view(`<Page xmlns:c="my.app.controls"><c:Gauge/></Page>`),
		view(`<Page xmlns:html="http://www.w3.org/1999/xhtml"><html:div/></Page>`),
		view(`<Page><</Page>`),
	}
	for _, text := range tests {
		assert.Empty(t, validate(text, Options{}), text)
	}
}

func TestAggregationCardinality(t *testing.T) {
	t.Run("explicit aggregation", func(t *testing.T) {
		text := view(`<Page><footer><Bar/><Toolbar/><OverflowToolbar/></footer></Page>`)
		got := validate(text, Options{})
		require.Equal(t, []int{1009, 1009}, codesOf(got))
		assert.Equal(t, spanOf(t, text, "Toolbar", 0), got[0].Span)
		assert.Equal(t, spanOf(t, text, "OverflowToolbar", 0), got[1].Span)
		assert.Contains(t, got[0].Message, `"footer"`)
	})

	t.Run("default aggregation", func(t *testing.T) {
		text := view(`<f:DynamicPageTitle xmlns:f="sap.f"><Text/><f:actions><Button/><Button/></f:actions><Label/></f:DynamicPageTitle>`)
		got := validate(text, Options{})
		require.Equal(t, []int{1009}, codesOf(got))
		assert.Equal(t, spanOf(t, text, "Label", 0), got[0].Span)
	})

	t.Run("multiple aggregation", func(t *testing.T) {
		assert.Empty(t, validate(view(`<Page><Button/><Text/><Label/></Page>`), Options{}))
	})
}

func TestAggregationType(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []int
	}{
		{"interface not implemented", `<Page><footer><Button/></footer></Page>`, []int{1010}},
		{"interface implemented", `<Page><footer><Toolbar/></footer></Page>`, nil},
		{"default aggregation class", `<List><Button/></List>`, []int{1010}},
		{"default aggregation subclass", `<List><StandardListItem/></List>`, nil},
		{"element aggregation accepts any element", `<Page xmlns:form="sap.ui.layout.form"><form:SimpleForm><Label/></form:SimpleForm></Page>`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validate(view(tt.body), Options{})
			assert.Equal(t, tt.want, codesOf(got))
		})
	}
}

func TestNonUniqueIDs(t *testing.T) {
	text := view(`<Page><Button id="dup"/><Text id="other"/><Label id="dup"/>` +
		`<Input id="{= 'bound' }"/><Input id="{= 'bound' }"/><Text id=""/><Text id=""/></Page>`)
	got := validate(text, Options{})
	require.Equal(t, []int{1011, 1011}, codesOf(got))

	first, second := spanOf(t, text, `"dup"`, 0), spanOf(t, text, `"dup"`, 1)
	assert.Equal(t, first, got[0].Span)
	assert.Equal(t, []Related{{Span: second, Message: "An identical ID is also used here."}}, got[0].Related)
	assert.Equal(t, second, got[1].Span)
	assert.Equal(t, []Related{{Span: first, Message: "An identical ID is also used here."}}, got[1].Related)
	assert.Contains(t, got[0].Message, `"dup"`)
}

func TestNonUniqueIDsReportEveryOccurrence(t *testing.T) {
	text := view(`<Page><Button id="x"/><Button id="x"/><Button id="x"/></Page>`)
	got := validate(text, Options{})
	require.Len(t, got, 3)
	for _, d := range got {
		assert.Len(t, d.Related, 2)
	}
}

func TestNonUniqueIDsIgnoreExemptNamespaces(t *testing.T) {
	text := view(`<Page xmlns:svg="http://www.w3.org/2000/svg" xmlns:core="sap.ui.core">` +
		`<core:Icon id="x"/><svg:Rect id="x"/><layoutData id="y"/><Text id="y"/></Page>`)
	got := validate(text, Options{})
	for _, d := range got {
		assert.NotEqual(t, NonUniqueID, d.Kind)
	}
}

func TestNonStableIDs(t *testing.T) {
	text := view(`<Page id="page"><Button/><content><Text id=""/><Label id="label"/></content></Page>`)

	assert.Empty(t, validate(text, Options{}))

	got := validate(text, Options{FlexEnabled: true})
	require.Equal(t, []int{1012, 1012}, codesOf(got))
	assert.Equal(t, spanOf(t, text, "Button", 0), got[0].Span)
	assert.Equal(t, spanOf(t, text, "Text", 0), got[1].Span)
}

func TestAttributeValues(t *testing.T) {
	text := view(`<Button type="Fancy" enabled="yes" visible="{= ${a} }" text="free"/>` +
		`<Input valueState="Error" editable="false"/><Page backgroundDesign="" showHeader="{flag}"/>`)
	got := validate(text, Options{})
	require.Equal(t, []int{1013, 1014}, codesOf(got))
	assert.Equal(t, spanOf(t, text, `"Fancy"`, 0), got[0].Span)
	assert.Contains(t, got[0].Message, "sap.m.ButtonType")
	assert.Equal(t, spanOf(t, text, `"yes"`, 0), got[1].Span)
}

func TestUnknownXMLNSValue(t *testing.T) {
	text := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m" xmlns:x="sap.nope" xmlns:app="my.app" xmlns:l="sap.ui.layout"/>`
	got := validate(text, Options{})
	require.Equal(t, []int{1015}, codesOf(got))
	assert.Equal(t, SeverityWarning, got[0].Severity)
	assert.Equal(t, spanOf(t, text, `"sap.nope"`, 0), got[0].Span)
}

func TestDeprecatedClass(t *testing.T) {
	text := view(`<DateTimeInput/>`)
	got := validate(text, Options{})
	require.Equal(t, []int{1016}, codesOf(got))
	d := got[0]
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.True(t, d.Deprecated)
	assert.Equal(t, `The "sap.m.DateTimeInput" class is deprecated since version 1.32.8. Use sap.m.DatePicker instead.`, d.Message)
	assert.Equal(t, spanOf(t, text, "DateTimeInput", 0), d.Span)
}

func TestDeprecatedAttribute(t *testing.T) {
	m, err := model.NewBuilder("SAPUI5", "1.120.0").AddClass(&model.Class{
		FQN: "my.lib.Gauge",
		Properties: []*model.Property{{
			Meta: model.Meta{Name: "legacy", Deprecated: &model.Status{Since: "2.0"}},
			Type: model.ParseType("string"),
		}},
		Events: []*model.Event{{Meta: model.Meta{Name: "tick", Deprecated: &model.Status{}}}},
	}).Build()
	require.NoError(t, err)

	text := `<l:Gauge xmlns:l="my.lib" legacy="x" tick="onTick"/>`
	got := Validate(xmldoc.Parse(text), m, Options{})
	require.Equal(t, []int{1017, 1017}, codesOf(got))
	assert.Equal(t, spanOf(t, text, "legacy", 0), got[0].Span)
	assert.Equal(t, `The "legacy" property is deprecated since version 2.0.`, got[0].Message)
	assert.Equal(t, `The "tick" event is deprecated.`, got[1].Message)
}

func TestUnknownAnnotationPaths(t *testing.T) {
	svc, err := odata.LoadEDMXFile("../odata/testdata/travel.xml")
	require.NoError(t, err)

	text := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns:macros="sap.fe.macros">` +
		`<macros:Chart contextPath="/Travel" metaPath="@com.sap.vocabularies.UI.v1.Chart#ByPrice"/>` +
		`<macros:Chart contextPath="/Nope" metaPath="whatever"/>` +
		`<macros:Table metaPath="/Booking/@com.sap.vocabularies.UI.v1.LineItem"/>` +
		`<macros:Field contextPath="/Booking" metaPath="to_Carrier/Nam"/>` +
		`<macros:Field contextPath="{path}" metaPath="to_Carrier/Name"/>` +
		`</mvc:View>`

	got := validate(text, Options{Service: svc})
	require.Equal(t, []int{1018, 1018}, codesOf(got))
	assert.Equal(t, spanOf(t, text, `"/Nope"`, 0), got[0].Span)
	assert.Equal(t, spanOf(t, text, `"to_Carrier/Nam"`, 0), got[1].Span)

	assert.Empty(t, validate(text, Options{}), "path checks need a service")
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{SeverityInfo, "info"},
		{SeverityHint, "hint"},
		{Severity(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sev.String())
	}
}
