package service

import (
	"context"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"panbot/model"
	"panbot/util"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var historyPragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA busy_timeout=5000;",
}

// OpenHistoryDB 打开（或创建）搜索历史数据库并迁移表结构
func OpenHistoryDB(path string) (*gorm.DB, error) {
	if err := util.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	applyPragmas(db, path, historyPragmas)

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.AutoMigrate(&model.SearchHistory{}); err != nil {
		return nil, err
	}
	return db, nil
}

// applyPragmas 逐条执行PRAGMA，失败（如只读存储无法开启WAL）只记警告
func applyPragmas(db *gorm.DB, path string, pragmas []string) {
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			log.Warn().Err(err).Str("pragma", pragma).Str("path", path).Msg("设置SQLite参数失败")
		}
	}
}

// HistoryService 搜索历史服务
type HistoryService struct {
	DB *gorm.DB
}

// NewHistoryService 创建搜索历史服务
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// Record 写入一条搜索记录
func (s *HistoryService) Record(ctx context.Context, entry *model.SearchHistory) error {
	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = time.Now()
	}
	entry.SearchedAt = entry.SearchedAt.UTC()
	return s.DB.WithContext(ctx).Create(entry).Error
}

// List 按时间倒序列出会话的搜索记录，limit 超出范围时取默认值
func (s *HistoryService) List(ctx context.Context, conversationID int64, limit int) ([]model.SearchHistory, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	var out []model.SearchHistory
	err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("searched_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Clear 删除会话的全部搜索记录，返回删除条数
func (s *HistoryService) Clear(ctx context.Context, conversationID int64) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&model.SearchHistory{})
	return res.RowsAffected, res.Error
}
