package model

import "time"

// Poem 诗歌条目（持久化结构，不直接用于 HTTP 传输）
type Poem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"type:varchar(100);not null"`
	Content   string    `gorm:"type:text;not null"`
	Author    string    `gorm:"type:varchar(100);not null"`
	Source    string    `gorm:"type:varchar(100);not null"`
	IsPosted  bool      `gorm:"not null;default:false;index:idx_poem_posted"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Poem) TableName() string { return "poems" }

// PoemFields 可整体替换的字段；IsPosted 为 nil 时保留原值
type PoemFields struct {
	Title    string
	Content  string
	Author   string
	Source   string
	IsPosted *bool
}
