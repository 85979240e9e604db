package storage

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"social-go/internal/config"
	"social-go/internal/models"
)

// InitDB initializes the database connection using the provided configuration.
func InitDB(cfg config.DatabaseConfig, zl *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "postgres":
		dsn := BuildPostgresDSN(cfg)
		zl.Debug("connecting to postgres",
			zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("db", cfg.DBName))
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		// 唯一约束冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// BuildPostgresDSN assembles a key=value DSN; the password is omitted when empty.
func BuildPostgresDSN(cfg config.DatabaseConfig) string {
	var dsnParts []string
	dsnParts = append(dsnParts, fmt.Sprintf("host=%s", cfg.Host))
	dsnParts = append(dsnParts, fmt.Sprintf("port=%d", cfg.Port))
	dsnParts = append(dsnParts, fmt.Sprintf("user=%s", cfg.User))
	dsnParts = append(dsnParts, fmt.Sprintf("dbname=%s", cfg.DBName))
	if cfg.Password != "" {
		dsnParts = append(dsnParts, fmt.Sprintf("password=%s", cfg.Password))
	}
	dsnParts = append(dsnParts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
	return strings.Join(dsnParts, " ")
}

// AutoMigrateTables runs GORM's auto-migration for all models.
// The three like ledgers share one struct and are migrated table by table.
func AutoMigrateTables(db *gorm.DB, zl *zap.Logger) error {
	zl.Info("开始数据库表结构迁移...")
	err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Post{},
		&models.Comment{},
		&models.Reply{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	for _, table := range []string{
		models.LikeTables[models.KindPost],
		models.LikeTables[models.KindComment],
		models.LikeTables[models.KindReply],
	} {
		if err := db.Table(table).AutoMigrate(&models.LikeRecord{}); err != nil {
			return fmt.Errorf("迁移点赞表 %s 失败: %w", table, err)
		}
	}
	zl.Info("数据库迁移完成。")
	return nil
}
