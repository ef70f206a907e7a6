// Package testutil 测试公用的数据库与数据构造
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/daily-poem/internal/model"
)

// NewTestDB 打开已迁移的内存 sqlite；单连接保证所有查询落在同一个内存库
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&model.Poem{}); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// NewPoem 返回必填字段齐全、尚未保存的诗歌
func NewPoem(title string) *model.Poem {
	return &model.Poem{
		Title:   title,
		Content: "content of " + title,
		Author:  "Hafez",
		Source:  "Divan",
	}
}
