package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

const MinPasswordLength = 8

var errBadCredentials = fmt.Errorf("%w: email ou mot de passe incorrect", errs.ErrUnauthorized)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

type ProfileUpdate struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// OAuthProfile est l'identité renvoyée par un fournisseur OAuth.
type OAuthProfile struct {
	Provider string
	Email    string
	Name     string
}

// Session est le résultat d'une authentification réussie.
type Session struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	users    repository.UserRepository
	customer *TokenIssuer
	admin    *TokenIssuer
}

func NewService(users repository.UserRepository, customer, admin *TokenIssuer) *Service {
	return &Service{users: users, customer: customer, admin: admin}
}

func (s *Service) CustomerTokens() *TokenIssuer { return s.customer }
func (s *Service) AdminTokens() *TokenIssuer    { return s.admin }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register crée un compte client local; errs.ErrEmailTaken si l'email existe.
func (s *Service) Register(ctx context.Context, in RegisterInput, remember bool) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Validation("email invalide")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, errs.Validation("le mot de passe doit contenir au moins %d caractères", MinPasswordLength)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := models.User{
		ID:        gocql.TimeUUID(),
		Email:     email,
		Password:  hash,
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleCustomer,
		IsActive:  true,
		Provider:  models.ProviderLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("✅ Compte client créé")
	return s.session(s.customer, u, remember)
}

// Login authentifie un client ou un administrateur sur l'espace client.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	u, err := s.checkPassword(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return s.session(s.customer, *u, in.Remember)
}

// AdminLogin exige le rôle admin et signe avec le secret administrateur.
func (s *Service) AdminLogin(ctx context.Context, in LoginInput) (*Session, error) {
	u, err := s.checkPassword(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleAdmin {
		log.Warn().Str("email", u.Email).Msg("⚠️ Tentative de connexion admin refusée")
		return nil, errBadCredentials
	}
	return s.session(s.admin, *u, in.Remember)
}

func (s *Service) checkPassword(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Password == "" {
		return nil, errBadCredentials
	}
	ok, err := VerifyPassword(password, u.Password)
	if err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("⚠️ Hash de mot de passe illisible")
		return nil, errBadCredentials
	}
	if !ok {
		return nil, errBadCredentials
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: compte désactivé", errs.ErrForbidden)
	}
	if IsBcryptHash(u.Password) {
		s.rehash(ctx, u, password)
	}
	return u, nil
}

// rehash migre un ancien hash bcrypt vers Argon2id.
func (s *Service) rehash(ctx context.Context, u *models.User, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		return
	}
	u.Password = hash
	u.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, u); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("⚠️ Migration du hash bcrypt échouée")
	}
}

// OAuthLogin crée le compte au premier passage puis ouvre une session client.
func (s *Service) OAuthLogin(ctx context.Context, p OAuthProfile) (*Session, error) {
	email := normalizeEmail(p.Email)
	if email == "" {
		return nil, errs.Validation("le fournisseur %s n'a pas renvoyé d'email", p.Provider)
	}
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		now := time.Now()
		u = &models.User{
			ID:        gocql.TimeUUID(),
			Email:     email,
			Name:      p.Name,
			Role:      models.RoleCustomer,
			IsActive:  true,
			Provider:  p.Provider,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		log.Info().Str("user_id", u.ID.String()).Str("provider", p.Provider).Msg("✅ Compte OAuth créé")
	case err != nil:
		return nil, err
	case !u.IsActive:
		return nil, fmt.Errorf("%w: compte désactivé", errs.ErrForbidden)
	case u.Name == "" && p.Name != "":
		u.Name = p.Name
		u.UpdatedAt = time.Now()
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return s.session(s.customer, *u, true)
}

func (s *Service) session(issuer *TokenIssuer, u models.User, remember bool) (*Session, error) {
	token, expires, err := issuer.Issue(u, remember)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: expires}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := gocql.ParseUUID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: identifiant invalide", errs.ErrUnauthorized)
	}
	return s.users.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, errs.Validation("le mot de passe doit contenir au moins %d caractères", MinPasswordLength)
		}
		if u.Password, err = HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}
	u.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if users == nil {
		users = []models.User{}
	}
	return users, err
}

func (s *Service) SetActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	id, err := gocql.ParseUUID(userID)
	if err != nil {
		return nil, errs.Validation("identifiant utilisateur invalide")
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID).Bool("active", active).Msg("✅ Statut du compte modifié")
	return u, nil
}

// EnsureAdmin crée le compte administrateur initial s'il n'existe pas,
// ou promeut le compte existant.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	if u != nil {
		if u.Role == models.RoleAdmin && u.IsActive {
			return nil
		}
		u.Role = models.RoleAdmin
		u.IsActive = true
		u.UpdatedAt = time.Now()
		return s.users.Update(ctx, u)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := models.User{
		ID:        gocql.TimeUUID(),
		Email:     email,
		Password:  hash,
		Name:      "Admin",
		Role:      models.RoleAdmin,
		IsActive:  true,
		Provider:  models.ProviderLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, &admin); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("✅ Compte administrateur initial créé")
	return nil
}
