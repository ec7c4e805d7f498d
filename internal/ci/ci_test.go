package ci

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "TF_BUILD", "JENKINS_URL", "GITHUB_STEP_SUMMARY", "GITHUB_OUTPUT"} {
		t.Setenv(key, "")
	}
}

func sampleReport() *Report {
	return &Report{Files: []FileReport{
		{
			Path: "webapp/view/Main.view.xml",
			Findings: []Finding{
				{Line: 3, Column: 5, Severity: "error", Code: 1001, Kind: "UnknownClassInNamespace", Message: "unknown class \"Buton\" in namespace \"sap.m\""},
				{Line: 7, Column: 2, Severity: "warning", Code: 1016, Kind: "UseOfDeprecatedClass", Message: "class DateTimeInput is deprecated\nuse DatePicker"},
			},
		},
		{Path: "webapp/view/Other.view.xml"},
	}}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want System
	}{
		{"none", nil, SystemGeneric},
		{"github", map[string]string{"GITHUB_ACTIONS": "true"}, SystemGitHub},
		{"gitlab", map[string]string{"GITLAB_CI": "true"}, SystemGitLab},
		{"circleci", map[string]string{"CIRCLECI": "true"}, SystemCircle},
		{"azure", map[string]string{"TF_BUILD": "True"}, SystemAzure},
		{"jenkins", map[string]string{"JENKINS_URL": "http://ci"}, SystemJenkins},
		{"github wins", map[string]string{"GITHUB_ACTIONS": "true", "JENKINS_URL": "http://ci"}, SystemGitHub},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCIEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := Detect(); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSystem(t *testing.T) {
	clearCIEnv(t)

	tests := []struct {
		in      string
		want    System
		wantErr bool
	}{
		{"auto", SystemGeneric, false},
		{"", SystemGeneric, false},
		{"github", SystemGitHub, false},
		{"jenkins", SystemJenkins, false},
		{"travis", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSystem(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSystem(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSystem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	if _, ok := NewHandler(Config{System: SystemGitHub}).(*GitHubHandler); !ok {
		t.Error("github system should use GitHubHandler")
	}
	h, ok := NewHandler(Config{System: SystemAzure}).(*GenericHandler)
	if !ok || h.Name != "Azure DevOps" {
		t.Errorf("azure handler = %#v", h)
	}
}

func TestReportSummary(t *testing.T) {
	errors, warnings, files := sampleReport().Summary()
	if errors != 1 || warnings != 1 || files != 2 {
		t.Errorf("Summary() = %d, %d, %d; want 1, 1, 2", errors, warnings, files)
	}
	if !sampleReport().HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if (&Report{}).HasErrors() {
		t.Error("empty report HasErrors() = true")
	}
}

func TestGitHubAnnotations(t *testing.T) {
	clearCIEnv(t)

	var stdout, stderr bytes.Buffer
	h := &GitHubHandler{Config: Config{Annotations: true}}
	if err := h.Handle(sampleReport(), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}

	want := "::error file=webapp/view/Main.view.xml,line=3,col=5,title=UnknownClassInNamespace (1001)::unknown class \"Buton\" in namespace \"sap.m\"\n" +
		"::warning file=webapp/view/Main.view.xml,line=7,col=2,title=UseOfDeprecatedClass (1016)::class DateTimeInput is deprecated%0Ause DatePicker\n"
	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestGitHubSummaryAndOutputs(t *testing.T) {
	clearCIEnv(t)
	dir := t.TempDir()
	summary := filepath.Join(dir, "summary.md")
	output := filepath.Join(dir, "output")
	t.Setenv("GITHUB_STEP_SUMMARY", summary)
	t.Setenv("GITHUB_OUTPUT", output)

	var stdout, stderr bytes.Buffer
	h := &GitHubHandler{Config: Config{Summary: true}}
	if err := h.Handle(sampleReport(), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 0 {
		t.Errorf("annotations written although disabled: %q", stdout.String())
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## UI5 View Check", "| Errors | 1 |", "| Warnings | 1 |", "Main.view.xml:3:5: error:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary missing %q:\n%s", want, data)
		}
	}

	data, err = os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("errors=1\nwarnings=1\nfiles=2\n", string(data)); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
}

func TestGenericHandler(t *testing.T) {
	var stdout bytes.Buffer
	h := &GenericHandler{Config: Config{Summary: true}, Name: "Jenkins"}
	if err := h.Handle(sampleReport(), &stdout, nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"UI5 Check Results (Jenkins)", "Files:    2", "Errors:   1", "Warnings: 1"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("output missing %q:\n%s", want, stdout.String())
		}
	}

	stdout.Reset()
	h.Config.Quiet = true
	if err := h.Handle(sampleReport(), &stdout, nil); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet handler wrote %q", stdout.String())
	}
}

func TestEscapeProperty(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a,b", "a%2Cb"},
		{"C:\\x", "C%3A\\x"},
		{"50%\n", "50%25%0A"},
	}
	for _, tt := range tests {
		if got := escapeProperty(tt.in); got != tt.want {
			t.Errorf("escapeProperty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
