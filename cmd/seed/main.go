// seed 从 JSON 文件批量导入诗歌。
//
//	FILE=poems.json go run ./cmd/seed
//
// 文件内容为 [{"title","content","author","source"}, ...]，RESET=1 时导入后把全部诗歌置为未发布。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/internal/dto"
	"github.com/d60-Lab/daily-poem/internal/repository"
	"github.com/d60-Lab/daily-poem/internal/service"
	"github.com/d60-Lab/daily-poem/pkg/database"
	"github.com/d60-Lab/daily-poem/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()

	file := "poems.json"
	if s := os.Getenv("FILE"); s != "" {
		file = s
	}
	raw := must(os.ReadFile(file))
	var reqs []dto.PoemRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		panic(fmt.Errorf("decode %s: %w", file, err))
	}

	db := must(database.InitDB(cfg))
	if err := repository.InitSchema(db); err != nil {
		panic(err)
	}
	svc := service.NewPoemService(repository.NewPoemRepository(db))

	in := make([]service.PoemInput, len(reqs))
	for i, r := range reqs {
		in[i] = service.PoemInput{Title: r.Title, Content: r.Content, Author: r.Author, Source: r.Source}
	}
	ctx := context.Background()
	n := must(svc.CreateBulk(ctx, in))
	logger.Info("poems imported", zap.String("file", file), zap.Int64("count", n))

	if os.Getenv("RESET") == "1" {
		reset := must(svc.ResetPosted(ctx))
		logger.Info("posted flags reset", zap.Int64("count", reset))
	}
	fmt.Printf("imported %d poems from %s\n", n, file)
}
