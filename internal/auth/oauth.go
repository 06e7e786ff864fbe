package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/errs"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type providerKey struct{}

// WithProvider place le nom du fournisseur dans le contexte de la requête
// pour gothic.GetProviderName.
func WithProvider(r *http.Request, provider string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), providerKey{}, provider))
}

// SetupGoth configure le flux OAuth web (redirection + callback).
func SetupGoth(cfg *config.Config) bool {
	store := sessions.NewCookieStore([]byte(cfg.Auth.SessionSecret))
	store.MaxAge(86400 * 30)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if p, ok := req.Context().Value(providerKey{}).(string); ok && p != "" {
			return p, nil
		}
		if p := req.URL.Query().Get("provider"); p != "" {
			return p, nil
		}
		return "", errors.New("provider not found")
	}

	if !cfg.OAuth.GoogleEnabled() {
		log.Warn().Msg("⚠️ Aucun provider OAuth configuré")
		return false
	}
	oc := cfg.GoogleOAuth()
	goth.UseProviders(google.New(oc.ClientID, oc.ClientSecret, oc.RedirectURL, "email", "profile"))
	log.Info().Msg("✅ Google OAuth activé")
	return true
}

// ProfileFromGoth convertit l'utilisateur renvoyé par gothic.
func ProfileFromGoth(u goth.User) OAuthProfile {
	name := u.Name
	if name == "" {
		name = u.FirstName
	}
	return OAuthProfile{Provider: u.Provider, Email: u.Email, Name: name}
}

// OAuthProvider échange un code d'autorisation obtenu par une application native.
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

func NewGoogleProvider(cfg *config.Config) *OAuthProvider {
	return &OAuthProvider{Name: "google", Config: cfg.GoogleOAuth(), UserInfoURL: googleUserInfoURL}
}

func (p *OAuthProvider) GetAuthURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange échange le code puis lit le profil du compte.
func (p *OAuthProvider) Exchange(ctx context.Context, code, redirectURI string) (OAuthProfile, error) {
	if code == "" {
		return OAuthProfile{}, errs.Validation("code d'autorisation manquant")
	}
	var opts []oauth2.AuthCodeOption
	if redirectURI != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	}
	token, err := p.Config.Exchange(ctx, code, opts...)
	if err != nil {
		return OAuthProfile{}, fmt.Errorf("%w: échange du code refusé: %v", errs.ErrUnauthorized, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return OAuthProfile{}, err
	}
	res, err := p.Config.Client(ctx, token).Do(req)
	if err != nil {
		return OAuthProfile{}, errs.Upstream(p.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return OAuthProfile{}, errs.Upstream(p.Name, fmt.Errorf("userinfo: statut %d", res.StatusCode))
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return OAuthProfile{}, errs.Upstream(p.Name, err)
	}
	if !info.EmailVerified {
		return OAuthProfile{}, fmt.Errorf("%w: email non vérifié", errs.ErrUnauthorized)
	}
	return OAuthProfile{Provider: p.Name, Email: info.Email, Name: info.Name}, nil
}
