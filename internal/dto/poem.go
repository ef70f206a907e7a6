// Package dto HTTP 接口的传输结构，与 gorm 持久化结构分离
package dto

import (
	"time"

	"github.com/d60-Lab/daily-poem/internal/model"
)

// PoemRequest POST /poems 的请求体，也是 POST /poems/bulk 的数组元素
type PoemRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
	Author  string `json:"author" form:"author"`
	Source  string `json:"source" form:"source"`
}

// PoemUpdateRequest PUT /poems/{id} 的请求体，IsPosted 可选
type PoemUpdateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Source   string `json:"source"`
	IsPosted *bool  `json:"is_posted,omitempty"`
}

type PoemResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Source    string    `json:"source"`
	IsPosted  bool      `json:"is_posted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromPoem(p *model.Poem) PoemResponse {
	return PoemResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author,
		Source:    p.Source,
		IsPosted:  p.IsPosted,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromPoems(ps []*model.Poem) []PoemResponse {
	out := make([]PoemResponse, len(ps))
	for i, p := range ps {
		out[i] = FromPoem(p)
	}
	return out
}
