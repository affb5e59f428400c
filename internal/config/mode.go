package config

import (
	"os"
	"strings"
)

// DeploymentMode represents the deployment context
type DeploymentMode string

const (
	// ModeDevelopment represents running from a source checkout
	// - Uses .env file for configuration
	// - Local Neo4j container, default passwords acceptable
	ModeDevelopment DeploymentMode = "development"

	// ModeProduction represents a deployed service
	// - Credentials via environment variables or config file
	// - Remote database expected, insecure defaults rejected
	ModeProduction DeploymentMode = "production"

	// ModeCI represents CI/CD pipeline execution
	// - All credentials from environment variables
	// - Strict validation, fail fast
	ModeCI DeploymentMode = "ci"
)

// DetectMode determines the deployment context based on environment
func DetectMode() DeploymentMode {
	// Explicit mode override (highest priority)
	if mode := os.Getenv("GRAPHSCOPE_DEPLOYMENT_MODE"); mode != "" {
		switch strings.ToLower(mode) {
		case "development", "dev":
			return ModeDevelopment
		case "production", "prod":
			return ModeProduction
		case "ci", "cicd":
			return ModeCI
		}
	}

	if isCI() {
		return ModeCI
	}

	// Development mode indicators
	for _, marker := range []string{".env", "go.mod", "Makefile"} {
		if _, err := os.Stat(marker); err == nil {
			return ModeDevelopment
		}
	}

	return ModeProduction
}

// isCI detects if running in a CI/CD environment
func isCI() bool {
	ciEnvVars := []string{
		"CI",                     // Generic CI indicator
		"CONTINUOUS_INTEGRATION", // Generic CI indicator
		"GITHUB_ACTIONS",         // GitHub Actions
		"GITLAB_CI",              // GitLab CI
		"CIRCLECI",               // CircleCI
		"JENKINS_URL",            // Jenkins
		"BUILDKITE",              // Buildkite
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}

	return false
}

// String returns the string representation of the mode
func (m DeploymentMode) String() string {
	return string(m)
}

// AllowsDevelopmentDefaults returns true if mode allows .env defaults
func (m DeploymentMode) AllowsDevelopmentDefaults() bool {
	return m == ModeDevelopment
}

// AllowsInteractivePrompts returns true if credentials may be prompted for
func (m DeploymentMode) AllowsInteractivePrompts() bool {
	return m == ModeDevelopment
}

// RequiresSecureCredentials returns true if mode requires secure passwords
func (m DeploymentMode) RequiresSecureCredentials() bool {
	return m == ModeProduction || m == ModeCI
}

// Description returns a human-readable description of the mode
func (m DeploymentMode) Description() string {
	switch m {
	case ModeDevelopment:
		return "Local development (source checkout)"
	case ModeProduction:
		return "Deployed service"
	case ModeCI:
		return "CI/CD pipeline"
	default:
		return "Unknown mode"
	}
}

// ConfigSource returns where credentials should come from
func (m DeploymentMode) ConfigSource() string {
	switch m {
	case ModeDevelopment:
		return ".env file"
	case ModeProduction:
		return "environment variables or config file"
	case ModeCI:
		return "environment variables only"
	default:
		return "unknown"
	}
}
