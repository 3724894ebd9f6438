// Package netsuite talks to the NetSuite REST web services: token exchange,
// record and query requests, metadata discovery and operation execution.
package netsuite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Base paths below the account REST URL.
const (
	TokenPath      = "/services/rest/auth/oauth2/v1/token"
	RecordBasePath = "/services/rest/record/v1"
	QueryBasePath  = "/services/rest/query/v1"
)

// Credentials identify an OAuth2 integration of a NetSuite account.
type Credentials struct {
	RestAPIURL   string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Validate reports the first missing credential field.
func (c Credentials) Validate() error {
	switch {
	case c.RestAPIURL == "":
		return errors.New("rest api url is required")
	case c.ClientID == "":
		return errors.New("client id is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.RefreshToken == "":
		return errors.New("refresh token is required")
	}
	return nil
}

func (c Credentials) baseURL() string {
	return strings.TrimRight(c.RestAPIURL, "/")
}

func (c Credentials) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL() + TokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// TokenSource exchanges the refresh token for access tokens. Tokens are
// cached until they expire.
func TokenSource(ctx context.Context, creds Credentials) oauth2.TokenSource {
	return creds.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
}

// AccessToken performs a single refresh token exchange.
func AccessToken(ctx context.Context, creds Credentials) (string, error) {
	tok, err := TokenSource(ctx, creds).Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("no access_token in NetSuite response")
	}
	return tok.AccessToken, nil
}
