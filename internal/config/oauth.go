package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleEnabled indique si le client OAuth Google est configuré.
func (c OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// GoogleOAuth construit la configuration oauth2 utilisée pour l'échange de code.
func (c *Config) GoogleOAuth() *oauth2.Config {
	redirect := c.OAuth.GoogleRedirectURL
	if redirect == "" {
		redirect = c.Server.BaseURL + "/api/auth/oauth/google/callback"
	}
	return &oauth2.Config{
		RedirectURL:  redirect,
		ClientID:     c.OAuth.GoogleClientID,
		ClientSecret: c.OAuth.GoogleClientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}
