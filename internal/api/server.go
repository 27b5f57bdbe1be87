package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/PasanRansinghe/gems/internal/api/auth"
	"github.com/PasanRansinghe/gems/internal/api/middleware"
	"github.com/PasanRansinghe/gems/internal/config"
	"github.com/PasanRansinghe/gems/internal/model"
	"github.com/PasanRansinghe/gems/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Auth Handler 以及 Gin 路由引擎。
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	router    *gin.Engine
	auth      *auth.Handler
	postStore GemPostStore
}

// GemPostStore 封装宝石信息的持久化操作。
type GemPostStore interface {
	CreateGemPost(ctx context.Context, post *model.GemPost) error
	FindAllGemPosts(ctx context.Context) ([]GemPostRow, error)
	FindGemPostsByFilters(ctx context.Context, color, gemType string) ([]GemPostRow, error)
	FindGemPostByID(ctx context.Context, id uint) (*model.GemPost, error)
	DeleteGemPost(ctx context.Context, id uint) (bool, error)
}

// GemPostRow 是列表接口返回的行：gem_posts 全列加发布者名称。
type GemPostRow struct {
	ID            uint      `gorm:"column:id" json:"id"`
	UserID        uint      `gorm:"column:user_id" json:"user_id"`
	PostedDate    time.Time `gorm:"column:posted_date" json:"posted_date"`
	GemType       string    `gorm:"column:gem_type" json:"gem_type"`
	GemColor      string    `gorm:"column:gem_color" json:"gem_color"`
	GemWeight     float64   `gorm:"column:gem_weight" json:"gem_weight"`
	GemWeightUnit string    `gorm:"column:gem_weight_unit" json:"gem_weight_unit"`
	OwnerName     string    `gorm:"column:owner_name" json:"owner_name"`
	ContactNumber string    `gorm:"column:contact_number" json:"contact_number"`
	Address       string    `gorm:"column:address" json:"address"`
	OtherInfo     string    `gorm:"column:other_info" json:"other_info"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
	UserName      string    `gorm:"column:user_name" json:"user_name"`
}

type dbGemPostStore struct {
	db *gorm.DB
}

func (s dbGemPostStore) CreateGemPost(ctx context.Context, post *model.GemPost) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s dbGemPostStore) FindAllGemPosts(ctx context.Context) ([]GemPostRow, error) {
	rows := []GemPostRow{}
	err := s.db.WithContext(ctx).
		Table("gem_posts").
		Select("gem_posts.*, users.name AS user_name").
		Joins("INNER JOIN users ON users.id = gem_posts.user_id").
		Order("gem_posts.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (s dbGemPostStore) FindGemPostsByFilters(ctx context.Context, color, gemType string) ([]GemPostRow, error) {
	rows := []GemPostRow{}
	query := s.db.WithContext(ctx).
		Table("gem_posts").
		Select("gem_posts.*, users.name AS user_name").
		Joins("INNER JOIN users ON users.id = gem_posts.user_id")
	if color != "" {
		query = query.Where("gem_posts.gem_color = ?", color)
	}
	if gemType != "" {
		query = query.Where("gem_posts.gem_type = ?", gemType)
	}
	err := query.Order("gem_posts.created_at DESC").Scan(&rows).Error
	return rows, err
}

func (s dbGemPostStore) FindGemPostByID(ctx context.Context, id uint) (*model.GemPost, error) {
	var post model.GemPost
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s dbGemPostStore) DeleteGemPost(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.GemPost{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 初始化 Prometheus 指标
// 3. 初始化 Gin 路由引擎
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
	})
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&model.User{}, &model.GemPost{}); err != nil {
		return nil, err
	}

	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Cors())

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		router:    r,
		auth:      auth.NewHandler(db, cfg.Security.JWTSecret, logger),
		postStore: dbGemPostStore{db: db},
	}
	s.registerRoutes()
	return s, nil
}

// Run 启动 HTTP 服务器并开始监听请求。
func (s *Server) Run() error {
	s.logger.Info("api server listening", slog.String("addr", s.cfg.App.HTTPAddr))
	return s.router.Run(s.cfg.App.HTTPAddr)
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库连接。
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	api := s.router.Group("/api")
	api.POST("/auth/signup", s.auth.Signup)
	api.POST("/auth/login", s.auth.Login)

	// 列表与检索对外公开，无需登录
	api.GET("/gem-posts", s.handleListGemPosts)
	api.GET("/gem-posts/search", s.handleSearchGemPosts)

	authed := api.Group("/")
	authed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret))
	authed.GET("/profile", s.auth.Profile)
	authed.POST("/auth/verify", s.auth.Verify)
	authed.POST("/gem-posts", s.handleCreateGemPost)
	authed.DELETE("/gem-posts/:id", s.handleDeleteGemPost)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createGemPostRequest 创建宝石信息的请求参数。
//
// 不包含 user_id：发布者永远取自令牌声明，客户端传什么都会被忽略。
type createGemPostRequest struct {
	PostedDate    string  `json:"posted_date" binding:"required"` // YYYY-MM-DD
	GemType       string  `json:"gem_type" binding:"required"`
	GemColor      string  `json:"gem_color" binding:"required"`
	GemWeight     float64 `json:"gem_weight" binding:"required"`
	GemWeightUnit string  `json:"gem_weight_unit" binding:"required"`
	OwnerName     string  `json:"owner_name" binding:"required"`
	ContactNumber string  `json:"contact_number" binding:"required"`
	Address       string  `json:"address" binding:"required"`
	OtherInfo     string  `json:"other_info"`
}

// handleListGemPosts 返回全部宝石信息（按创建时间倒序，带发布者名称）。
//
// GET /api/gem-posts
func (s *Server) handleListGemPosts(c *gin.Context) {
	rows, err := s.postStore.FindAllGemPosts(c.Request.Context())
	if err != nil {
		s.logger.Error("list gem posts failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleSearchGemPosts 按颜色和/或种类过滤宝石信息。
//
// GET /api/gem-posts/search?color=&type=
// 两个过滤条件都可选，同时给出时取逻辑与；都不给等价于全量列表。
func (s *Server) handleSearchGemPosts(c *gin.Context) {
	color := c.Query("color")
	gemType := c.Query("type")

	rows, err := s.postStore.FindGemPostsByFilters(c.Request.Context(), color, gemType)
	if err != nil {
		s.logger.Error("search gem posts failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleCreateGemPost 处理发布宝石信息的请求。
//
// POST /api/gem-posts
func (s *Server) handleCreateGemPost(c *gin.Context) {
	var req createGemPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "all fields except other_info are required"})
		return
	}

	postedDate, err := time.Parse("2006-01-02", req.PostedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid posted_date, expected YYYY-MM-DD"})
		return
	}
	gemType := model.GemType(req.GemType)
	if !gemType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid gem_type"})
		return
	}
	gemColor := model.GemColor(req.GemColor)
	if !gemColor.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid gem_color"})
		return
	}
	weightUnit := model.WeightUnit(req.GemWeightUnit)
	if !weightUnit.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid gem_weight_unit"})
		return
	}
	if req.GemWeight <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "gem_weight must be a positive number"})
		return
	}

	post := model.GemPost{
		UserID:        getUserID(c),
		PostedDate:    postedDate,
		Type:          gemType,
		Color:         gemColor,
		Weight:        req.GemWeight,
		WeightUnit:    weightUnit,
		OwnerName:     req.OwnerName,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		OtherInfo:     req.OtherInfo,
	}

	if err := s.postStore.CreateGemPost(c.Request.Context(), &post); err != nil {
		s.logger.Error("create gem post failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}

	metrics.GemPostCreatedTotal.Inc()
	s.logger.Info("gem post created",
		slog.Int("post_id", int(post.ID)),
		slog.Int("user_id", int(post.UserID)),
		slog.String("gem_type", string(post.Type)),
	)
	c.JSON(http.StatusCreated, gin.H{
		"message": "gem post created successfully",
		"gemPost": post,
	})
}

// handleDeleteGemPost 删除一条宝石信息。
//
// DELETE /api/gem-posts/:id
//
// 归属校验只信任令牌声明里的用户 ID：先按 id 查原始记录，
// 不存在返回 404，不是本人返回 403，否则删除。
func (s *Server) handleDeleteGemPost(c *gin.Context) {
	idStr := c.Param("id")
	postID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid post id"})
		return
	}
	userID := getUserID(c)

	post, err := s.postStore.FindGemPostByID(c.Request.Context(), uint(postID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "gem post not found"})
			return
		}
		s.logger.Error("load gem post failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}

	if post.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "you can only delete your own posts"})
		return
	}

	removed, err := s.postStore.DeleteGemPost(c.Request.Context(), uint(postID))
	if err != nil {
		s.logger.Error("delete gem post failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	if !removed {
		// 查到后删除前被并发删掉了，结果一致，不算错误。
		s.logger.Warn("gem post already removed", slog.Int("post_id", int(postID)))
	} else {
		metrics.GemPostDeletedTotal.Inc()
	}

	c.JSON(http.StatusOK, gin.H{"message": "gem post deleted successfully"})
}

func getUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}
