// Package ci reports ui5check diagnostics in the formats CI systems
// understand.
//
// The system is detected from environment variables unless one is given
// explicitly.
package ci

import (
	"fmt"
	"io"
	"os"
)

// System represents a supported CI system.
type System string

const (
	SystemGitHub  System = "github"
	SystemGitLab  System = "gitlab"
	SystemCircle  System = "circleci"
	SystemAzure   System = "azure"
	SystemJenkins System = "jenkins"
	SystemGeneric System = "generic"
)

// Handler processes a report for a specific CI system.
type Handler interface {
	// Handle writes the report in the system's format.
	Handle(report *Report, stdout, stderr io.Writer) error
}

// Config holds configuration for the CI reporter.
type Config struct {
	System      System
	Annotations bool
	Summary     bool
	Quiet       bool
}

// ParseSystem maps a -ci flag value to a System. "auto" and the empty
// string detect the system from the environment.
func ParseSystem(s string) (System, error) {
	switch System(s) {
	case "", "auto":
		return Detect(), nil
	case SystemGitHub, SystemGitLab, SystemCircle, SystemAzure, SystemJenkins, SystemGeneric:
		return System(s), nil
	default:
		return "", fmt.Errorf("unknown CI system %q", s)
	}
}

// Detect auto-detects the CI system from environment variables.
func Detect() System {
	switch {
	case os.Getenv("GITHUB_ACTIONS") == "true":
		return SystemGitHub
	case os.Getenv("GITLAB_CI") == "true":
		return SystemGitLab
	case os.Getenv("CIRCLECI") == "true":
		return SystemCircle
	case os.Getenv("TF_BUILD") == "True":
		return SystemAzure
	case os.Getenv("JENKINS_URL") != "":
		return SystemJenkins
	default:
		return SystemGeneric
	}
}

// NewHandler returns the handler for cfg.System.
func NewHandler(cfg Config) Handler {
	switch cfg.System {
	case SystemGitHub:
		return &GitHubHandler{Config: cfg}
	case SystemGitLab:
		return &GenericHandler{Config: cfg, Name: "GitLab CI"}
	case SystemCircle:
		return &GenericHandler{Config: cfg, Name: "CircleCI"}
	case SystemAzure:
		return &GenericHandler{Config: cfg, Name: "Azure DevOps"}
	case SystemJenkins:
		return &GenericHandler{Config: cfg, Name: "Jenkins"}
	default:
		return &GenericHandler{Config: cfg, Name: "Generic"}
	}
}
