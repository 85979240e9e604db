package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/models"
	"social-go/internal/storage"
)

// SignUpInput carries a validated sign-up form.
type SignUpInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Gender    string
	Birthday  string
}

// FederatedIdentity is a user profile asserted by an external identity provider.
type FederatedIdentity struct {
	Provider    string
	Subject     string
	DisplayName string
}

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	Register(ctx context.Context, in SignUpInput) (token string, user *models.User, err error)
	Authenticate(ctx context.Context, username, password string) (token string, user *models.User, err error)
	FederatedLogin(ctx context.Context, identity FederatedIdentity) (token string, user *models.User, err error)
	VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo  storage.UserRepository
	blacklist auth.TokenBlacklist
	cfg       config.AuthConfig
	logger    *zap.Logger
}

// NewAuthService 创建一个新的 AuthService 实例。blacklist 为 nil 时登出不会吊销 Token。
func NewAuthService(userRepo storage.UserRepository, blacklist auth.TokenBlacklist, cfg config.AuthConfig, logger *zap.Logger) AuthService {
	return &authService{userRepo: userRepo, blacklist: blacklist, cfg: cfg, logger: logger}
}

// Register 处理用户注册逻辑。
func (s *authService) Register(ctx context.Context, in SignUpInput) (string, *models.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return "", nil, apperrors.Forbidden("Email already in use")
	}
	if !errors.Is(err, storage.ErrRecordNotFound) {
		return "", nil, apperrors.Internal("检查用户名时出错", err)
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", nil, apperrors.ValidationFields("Password too long", map[string]string{"password": "at most 72 bytes"})
	}
	if err != nil {
		return "", nil, apperrors.Internal("密码哈希失败", err)
	}

	gender := in.Gender
	if gender == "" {
		gender = models.GenderOther
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Gender:       gender,
		Birthday:     in.Birthday,
	}
	user.AvatarURL = defaultAvatarURL(user.FirstName, user.LastName)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicatedKey) {
			// lost a race with a concurrent sign-up
			return "", nil, apperrors.Forbidden("Email already in use")
		}
		return "", nil, apperrors.Internal("创建用户失败", err)
	}
	s.logger.Info("user registered", zap.String("user", user.ID))

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate 处理用户登录逻辑。未知用户与密码错误返回同样的错误。
func (s *authService) Authenticate(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrRecordNotFound) {
		return "", nil, apperrors.Unauthorized("Incorrect username or password")
	}
	if err != nil {
		return "", nil, apperrors.Internal("查找用户失败", err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperrors.Unauthorized("Incorrect username or password")
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// FederatedLogin finds the account linked to identity, creating it on first use.
func (s *authService) FederatedLogin(ctx context.Context, identity FederatedIdentity) (string, *models.User, error) {
	if identity.Provider == "" || identity.Subject == "" {
		return "", nil, apperrors.Unauthorized("Invalid federated identity")
	}
	oauthID := identity.Provider + ":" + identity.Subject

	user, err := s.userRepo.GetByOAuthID(ctx, oauthID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		first, last := splitDisplayName(identity.DisplayName)
		user = &models.User{
			Username:  oauthID,
			FirstName: first,
			LastName:  last,
			Gender:    models.GenderOther,
			AvatarURL: defaultAvatarURL(first, last),
			OAuthID:   &oauthID,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if !errors.Is(err, storage.ErrDuplicatedKey) {
				return "", nil, apperrors.Internal("创建用户失败", err)
			}
			// concurrent first login created it
			if user, err = s.userRepo.GetByOAuthID(ctx, oauthID); err != nil {
				return "", nil, apperrors.Internal("查找用户失败", err)
			}
		}
	} else if err != nil {
		return "", nil, apperrors.Internal("查找用户失败", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(ctx, token, s.cfg.JWTSecretKey, s.blacklist)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Invalid or expired token", err)
	}
	return claims, nil
}

// Logout 将 Token 的 jti 加入黑名单，直到其原本的过期时间。
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.Unauthorized("Not logged in")
	}
	if s.blacklist == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.Internal("登出失败", err)
	}
	return nil
}

func (s *authService) issue(user *models.User) (string, error) {
	token, err := auth.GenerateToken(user.ID, user.Username, s.cfg)
	if err != nil {
		return "", apperrors.Internal("生成令牌失败", err)
	}
	return token, nil
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "User", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// defaultAvatarURL renders the user's initials as a placeholder image.
func defaultAvatarURL(first, last string) string {
	initials := ""
	for _, part := range []string{first, last} {
		if r := []rune(part); len(r) > 0 {
			initials += string(r[0])
		}
	}
	return "https://api.dicebear.com/5.x/initials/svg?seed=" + url.QueryEscape(initials)
}
