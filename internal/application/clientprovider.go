package application

import (
	"sync"

	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// ClientProvider enables runtime hot-swap of the provider API clients.
// Tokens saved while the server runs take effect on the next request
// without a restart.
type ClientProvider struct {
	mu     sync.RWMutex
	github driven.GitHubClient
	gitlab driven.GitLabClient
}

// NewClientProvider creates a provider holding the given clients. Either may be nil.
func NewClientProvider(github driven.GitHubClient, gitlab driven.GitLabClient) *ClientProvider {
	return &ClientProvider{github: github, gitlab: gitlab}
}

// GitHub returns the current GitHub client, or nil if none is configured.
func (p *ClientProvider) GitHub() driven.GitHubClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.github
}

// GitLab returns the current GitLab client, or nil if none is configured.
func (p *ClientProvider) GitLab() driven.GitLabClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gitlab
}

// ReplaceGitHub swaps the GitHub client.
func (p *ClientProvider) ReplaceGitHub(client driven.GitHubClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.github = client
}

// ReplaceGitLab swaps the GitLab client.
func (p *ClientProvider) ReplaceGitLab(client driven.GitLabClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gitlab = client
}
