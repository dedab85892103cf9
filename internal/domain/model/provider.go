package model

// Provider identifies a source-control hosting platform.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGitLab Provider = "gitlab"
)

// IsKnown reports whether p is one of the supported providers.
func (p Provider) IsKnown() bool {
	return p == ProviderGitHub || p == ProviderGitLab
}
