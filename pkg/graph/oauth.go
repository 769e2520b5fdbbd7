package graph

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// NewOAuthConfig builds the authorization-code config for connecting an Outlook account.
// tokenURL overrides the tenant's default token endpoint when set.
func NewOAuthConfig(clientID, clientSecret, tenant, redirectURL, tokenURL string, scopes []string) *oauth2.Config {
	endpoint := microsoft.AzureADEndpoint(tenant)
	if tokenURL != "" {
		endpoint.TokenURL = tokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}
