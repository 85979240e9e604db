package apiserver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/config"
	"social-go/internal/middleware"
	"social-go/internal/models"
	"social-go/internal/services"
)

// AuthHandler 封装了认证相关的 HTTP 处理器方法。
type AuthHandler struct {
	authService services.AuthService
	cfg         config.AuthConfig
	logger      *zap.Logger
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService services.AuthService, cfg config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, logger: logger}
}

// SignUpRequest 是用户注册请求的结构体。username 即邮箱。
type SignUpRequest struct {
	Username        string `json:"username" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female other"`
	Birthday        string `json:"birthday" validate:"required,pastdate"`
}

// LoginRequest 是用户登录请求的结构体。
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 是注册或登录成功后返回的结构体。
type LoginResponse struct {
	Token    string               `json:"token"`
	UserInfo models.UserBasicInfo `json:"userInfo"`
}

// SignUp 处理用户注册请求，成功后直接返回令牌。
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	token, user, err := h.authService.Register(r.Context(), services.SignUpInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Birthday:  req.Birthday,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	setTokenCookie(w, token, h.cfg.JWTExpiry)
	writeJSONResponse(w, http.StatusOK, LoginResponse{Token: token, UserInfo: user.BasicInfo()})
}

// LogIn 处理用户登录请求。
func (h *AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	token, user, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	setTokenCookie(w, token, h.cfg.JWTExpiry)
	writeJSONResponse(w, http.StatusOK, LoginResponse{Token: token, UserInfo: user.BasicInfo()})
}

// LogOut 吊销当前令牌并清除 Cookie。
func (h *AuthHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, apperrors.Unauthorized("Not logged in"))
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeMessage(w, "Logged out")
}

func setTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
