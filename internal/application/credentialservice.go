package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/shortest/internal/domain/model"
	"github.com/ericfisherdev/shortest/internal/domain/port/driven"
)

// ErrEmptyToken is returned when a blank token is submitted.
var ErrEmptyToken = errors.New("token is required")

// ClientFactory builds provider clients for a token. An empty token yields an
// anonymous client.
type ClientFactory struct {
	GitHub func(token string) (driven.GitHubClient, error)
	GitLab func(token string) (driven.GitLabClient, error)
}

// CredentialService persists provider tokens and swaps the matching client in
// the ClientProvider so the next request uses the new token.
type CredentialService struct {
	store     driven.CredentialStore
	clients   *ClientProvider
	factory   ClientFactory
	envTokens map[model.Provider]string
	logger    *slog.Logger
}

// NewCredentialService creates a CredentialService. envTokens are the tokens
// from the environment, used when no stored token exists.
func NewCredentialService(
	store driven.CredentialStore,
	clients *ClientProvider,
	factory ClientFactory,
	envTokens map[model.Provider]string,
	logger *slog.Logger,
) *CredentialService {
	return &CredentialService{
		store:     store,
		clients:   clients,
		factory:   factory,
		envTokens: envTokens,
		logger:    logger,
	}
}

// Token returns the effective token for provider: the stored one when present,
// otherwise the environment token. Store failures fall back to the environment.
func (s *CredentialService) Token(ctx context.Context, provider model.Provider) string {
	stored, err := s.store.Get(ctx, provider)
	switch {
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
	case err != nil:
		s.logger.Warn("failed to read stored token", "provider", provider, "error", err)
	case stored != "":
		return stored
	}
	return s.envTokens[provider]
}

// Init builds both provider clients from the effective tokens.
func (s *CredentialService) Init(ctx context.Context) error {
	for _, provider := range []model.Provider{model.ProviderGitHub, model.ProviderGitLab} {
		if err := s.install(provider, s.Token(ctx, provider)); err != nil {
			return err
		}
	}
	return nil
}

// SaveToken stores token for provider and activates it immediately.
func (s *CredentialService) SaveToken(ctx context.Context, provider model.Provider, token string) error {
	if !provider.IsKnown() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.store.Set(ctx, provider, token); err != nil {
		return fmt.Errorf("store %s token: %w", provider, err)
	}

	return s.install(provider, token)
}

// ClearToken removes the stored token for provider and reverts to the
// environment token.
func (s *CredentialService) ClearToken(ctx context.Context, provider model.Provider) error {
	if !provider.IsKnown() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}

	if err := s.store.Delete(ctx, provider); err != nil {
		return fmt.Errorf("delete %s token: %w", provider, err)
	}

	return s.install(provider, s.envTokens[provider])
}

func (s *CredentialService) install(provider model.Provider, token string) error {
	switch provider {
	case model.ProviderGitHub:
		client, err := s.factory.GitHub(token)
		if err != nil {
			return fmt.Errorf("create github client: %w", err)
		}
		s.clients.ReplaceGitHub(client)
	case model.ProviderGitLab:
		client, err := s.factory.GitLab(token)
		if err != nil {
			return fmt.Errorf("create gitlab client: %w", err)
		}
		s.clients.ReplaceGitLab(client)
	}

	s.logger.Info("provider client configured", "provider", provider, "authenticated", token != "")
	return nil
}
