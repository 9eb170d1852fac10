package mcp

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// PolicyFilename is the policy file looked up in the data directory.
const PolicyFilename = "mcp-policy.yaml"

const defaultMaxEvents = 100

// AccessPolicy controls what the MCP server can expose.
type AccessPolicy struct {
	ToolsAllow       []string `yaml:"tools_allow"`
	ToolsDeny        []string `yaml:"tools_deny"`
	MaxEvents        int      `yaml:"max_events"`
	RedactIdentities bool     `yaml:"redact_identities"`
}

// DefaultPolicy returns a permissive default policy.
func DefaultPolicy() *AccessPolicy {
	return &AccessPolicy{
		ToolsAllow: []string{"*"},
		MaxEvents:  defaultMaxEvents,
	}
}

// LoadPolicy reads an access policy from a YAML file.
// Returns nil, nil if the file does not exist.
func LoadPolicy(path string) (*AccessPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var policy AccessPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// CanUseTool reports whether the policy exposes the named tool.
func (p *AccessPolicy) CanUseTool(name string) bool {
	if matchesAny(name, p.ToolsDeny) {
		return false
	}
	if len(p.ToolsAllow) == 0 {
		return true
	}
	return matchesAny(name, p.ToolsAllow)
}

// EventLimit clamps a requested page size to the policy maximum.
func (p *AccessPolicy) EventLimit(requested int) int {
	limit := p.MaxEvents
	if limit <= 0 {
		limit = defaultMaxEvents
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

// matchesAny returns true if name matches any of the glob patterns.
func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
