package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/PasanRansinghe/gems/internal/model"
	"github.com/PasanRansinghe/gems/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenTTL 令牌有效期，签发后 24 小时过期。
const TokenTTL = 24 * time.Hour

// UserStore 封装用户持久化操作。
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

type dbUserStore struct {
	db *gorm.DB
}

func (s dbUserStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s dbUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s dbUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Handler 提供注册、登录与用户信息接口。
type Handler struct {
	store     UserStore
	jwtSecret []byte
	logger    *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(db *gorm.DB, jwtSecret string, logger *slog.Logger) *Handler {
	return &Handler{
		store:     dbUserStore{db: db},
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

type customClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Signup 创建新用户并签发 JWT。
//
// POST /api/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "all fields are required"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password must be at least 6 characters"})
		return
	}

	// 邮箱按原样存储、精确匹配，不做大小写归一化。
	_, err := h.store.FindByEmail(c.Request.Context(), req.Email)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user already exists with this email"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.Error("query user failed", slog.String("email", req.Email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
		return
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		h.logger.Error("create user failed", slog.String("email", req.Email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
		return
	}

	token, err := h.issueToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("sign token failed", slog.String("email", req.Email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
		return
	}

	metrics.SignupTotal.Inc()
	h.logger.Info("user registered", slog.String("email", user.Email), slog.Int("user_id", int(user.ID)))
	c.JSON(http.StatusCreated, authResponse{
		Message: "user created successfully",
		Token:   token,
		User:    user.Public(),
	})
}

// Login 校验凭据并签发 JWT。
//
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	user, err := h.store.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// 未注册与密码错误返回同样的提示，避免探测已注册邮箱。
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid credentials"})
		return
	}

	token, err := h.issueToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("sign token failed", slog.String("email", req.Email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login"})
		return
	}

	metrics.LoginTotal.Inc()
	h.logger.Info("user logged in", slog.String("email", user.Email))
	c.JSON(http.StatusOK, authResponse{
		Message: "login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// Profile 返回当前登录用户的信息。
//
// GET /api/profile
func (h *Handler) Profile(c *gin.Context) {
	userID := c.GetUint("userID")
	user, err := h.store.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		h.logger.Error("query user failed", slog.Int("user_id", int(userID)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// Verify 确认令牌有效并回显令牌中的声明。
//
// POST /api/auth/verify
func (h *Handler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"userId": c.GetUint("userID"),
			"email":  c.GetString("email"),
		},
	})
}

func (h *Handler) issueToken(userID uint, email string) (string, error) {
	claims := customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
