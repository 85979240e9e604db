package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"social-go/internal/apperrors"
	"social-go/internal/config"
	"social-go/internal/services"
)

const (
	oauthStateCookie   = "oauth_state"
	facebookProvider   = "facebook"
	facebookProfileURL = "https://graph.facebook.com/me?fields=id,name"
)

// facebookProfile is the subset of the Graph API /me response we use.
type facebookProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OAuthHandler runs the Facebook authorization-code flow and signs the user
// in through AuthService.FederatedLogin.
type OAuthHandler struct {
	authService services.AuthService
	oauth       *oauth2.Config
	authCfg     config.AuthConfig
	profileURL  string
	logger      *zap.Logger
}

// NewOAuthHandler returns nil when no Facebook client id is configured.
func NewOAuthHandler(authService services.AuthService, authCfg config.AuthConfig, logger *zap.Logger) *OAuthHandler {
	fb := authCfg.Facebook
	if fb.ClientID == "" {
		return nil
	}
	return &OAuthHandler{
		authService: authService,
		oauth:       &oauth2.Config{
			ClientID:     fb.ClientID,
			ClientSecret: fb.ClientSecret,
			RedirectURL:  fb.RedirectURL,
			Endpoint:     facebook.Endpoint,
			Scopes:       []string{"public_profile"},
		},
		authCfg:    authCfg,
		profileURL: facebookProfileURL,
		logger:     logger,
	}
}

// Begin redirects to the provider's consent page.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback exchanges the code, loads the profile and redirects to the frontend
// with the session cookie set.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		respondError(w, r, h.logger, apperrors.Unauthorized("Invalid OAuth state"))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, r, h.logger, apperrors.Unauthorized("Authorization was denied"))
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		respondError(w, r, h.logger, apperrors.Wrap(apperrors.KindUnauthorized, "Authorization failed", err))
		return
	}
	profile, err := h.fetchProfile(r.Context(), tok)
	if err != nil {
		respondError(w, r, h.logger, apperrors.Internal("Could not load profile", err))
		return
	}

	token, user, err := h.authService.FederatedLogin(r.Context(), services.FederatedIdentity{
		Provider:    facebookProvider,
		Subject:     profile.ID,
		DisplayName: profile.Name,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.logger.Info("federated login", zap.String("provider", facebookProvider), zap.String("user", user.ID))

	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/", MaxAge: -1})
	setTokenCookie(w, token, h.authCfg.JWTExpiry)
	http.Redirect(w, r, h.authCfg.FrontendURL, http.StatusFound)
}

func (h *OAuthHandler) fetchProfile(ctx context.Context, tok *oauth2.Token) (*facebookProfile, error) {
	resp, err := h.oauth.Client(ctx, tok).Get(h.profileURL)
	if err != nil {
		return nil, fmt.Errorf("请求 Graph API 失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Graph API 返回状态 %d", resp.StatusCode)
	}
	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("解析 Graph API 响应失败: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("Graph API 响应缺少 id")
	}
	return &profile, nil
}
