package oidc

import (
	"context"
	"fmt"

	"github.com/benvon/career-coach/internal/models"
	"golang.org/x/oauth2"
)

// DefaultScopes are requested on every login.
var DefaultScopes = []string{"openid", "email", "profile"}

// Client wraps OAuth2 client functionality
type Client struct {
	config *oauth2.Config
}

// NewClient creates an OAuth2 client for the provider's code flow
func NewClient(oidcConfig *models.OIDCConfig, login *LoginConfig) *Client {
	clientSecret := ""
	if oidcConfig.ClientSecret != nil {
		clientSecret = *oidcConfig.ClientSecret
	}

	return &Client{config: &oauth2.Config{
		ClientID:     oidcConfig.ClientID,
		ClientSecret: clientSecret,
		RedirectURL:  oidcConfig.RedirectURI,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  login.AuthorizationEndpoint,
			TokenURL: login.TokenEndpoint,
		},
	}}
}

// AuthCodeURL returns the authorization URL carrying state
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Tokens is the result of a code exchange.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	out := &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = id
	}
	return out, nil
}
