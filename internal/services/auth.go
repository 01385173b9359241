package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	ErrOAuthNotConfigured = errors.New("identity provider is not configured")
	ErrInvalidIdentity    = errors.New("identity provider returned no user id")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	JWTSecret    string
	SessionTTL   time.Duration
	AdminEmails  []string

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// AuthService delegates sign-in to the OAuth provider and turns the
// provider's identity into a signed session token.
type AuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	jwtSecret   string
	sessionTTL  time.Duration
	adminEmails []string
}

type userInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func NewAuthService(cfg AuthConfig) *AuthService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		jwtSecret:   cfg.JWTSecret,
		sessionTTL:  ttl,
		adminEmails: cfg.AdminEmails,
	}
}

func (s *AuthService) Configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

func (s *AuthService) AuthCodeURL(state string) (string, error) {
	if !s.Configured() {
		return "", ErrOAuthNotConfigured
	}
	return s.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Exchange trades an authorization code for the signed-in user's identity.
func (s *AuthService) Exchange(ctx context.Context, code string) (*models.User, error) {
	if !s.Configured() {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: unexpected status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Sub == "" {
		return nil, ErrInvalidIdentity
	}

	return &models.User{
		ID:      info.Sub,
		Name:    info.Name,
		Email:   info.Email,
		Image:   info.Picture,
		IsAdmin: s.IsAdmin(info.Email),
	}, nil
}

func (s *AuthService) IssueSession(user *models.User) (string, time.Time, error) {
	return utils.GenerateSessionToken(user.ID, user.Name, user.Email, user.Image, s.jwtSecret, s.sessionTTL)
}

// ParseSession validates a session token. Admin status is evaluated against
// the current allow-list rather than trusted from the token.
func (s *AuthService) ParseSession(token string) (*models.User, error) {
	claims, err := utils.ValidateSessionToken(token, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return &models.User{
		ID:      claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Image:   claims.Image,
		IsAdmin: s.IsAdmin(claims.Email),
	}, nil
}

func (s *AuthService) IsAdmin(email string) bool {
	return utils.IsAllowedEmail(email, s.adminEmails)
}
