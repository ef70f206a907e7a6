// cachebench 对比诗歌列表在有无 Redis 缓存时的读取延迟。
//
//	N=5000 REQ=3000 WRITE_EVERY=50 REDIS_ADDR=localhost:6379 go run ./cmd/cachebench
//
// 数据库沿用 config 的配置；每 WRITE_EVERY 次读插入一次写，模拟录入打断缓存。
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/internal/cache"
	"github.com/d60-Lab/daily-poem/internal/model"
	"github.com/d60-Lab/daily-poem/internal/repository"
	"github.com/d60-Lab/daily-poem/pkg/database"
)

type scenarioResult struct {
	durations   []time.Duration
	hits        int64
	misses      int64
	memoryBytes int64
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(repository.InitSchema(db))
	mustDo(db.Exec("DELETE FROM poems").Error)

	n := envInt("N", 5000)
	reqs := envInt("REQ", 3000)
	writeEvery := envInt("WRITE_EVERY", 50)

	poems := make([]*model.Poem, n)
	for i := range poems {
		poems[i] = &model.Poem{
			Title:   fmt.Sprintf("poem-%d", i),
			Content: strings.Repeat("verse ", 30),
			Author:  "Hafez",
			Source:  "Divan",
		}
	}
	base := repository.NewPoemRepository(db)
	must(base.CreateMany(ctx, poems))
	fmt.Printf("seeded %d poems\n", n)

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = cfg.Redis.Addr
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("redis at %s: %v", addr, err))
	}

	pc := cache.NewPoemCache(client, 10*time.Minute)
	cached := repository.NewCachedPoemRepository(base, pc)

	noCache := runScenario(ctx, base, nil, client, reqs, writeEvery)
	withCache := runScenario(ctx, cached, pc, client, reqs, writeEvery)

	fmt.Printf("\nPoem list latency (%d req, %d poems, write every %d)\n", reqs, n, writeEvery)
	for _, row := range []struct {
		name string
		r    scenarioResult
	}{{"No cache", noCache}, {"Redis list cache", withCache}} {
		fmt.Printf("%-18s avg=%v p95=%v p99=%v hits=%d misses=%d mem=%s\n",
			row.name, avg(row.r.durations), pct(row.r.durations, 0.95), pct(row.r.durations, 0.99),
			row.r.hits, row.r.misses, formatBytes(row.r.memoryBytes))
	}
}

func runScenario(ctx context.Context, repo repository.PoemRepository, pc *cache.PoemCache, client *redis.Client, reqs, writeEvery int) scenarioResult {
	client.FlushAll(ctx)
	h0, m0 := int64(0), int64(0)
	if pc != nil {
		h0, m0 = pc.Stats()
	}

	out := make([]time.Duration, 0, reqs)
	for i := 0; i < reqs; i++ {
		if writeEvery > 0 && i > 0 && i%writeEvery == 0 {
			mustDo(repo.Create(ctx, &model.Poem{Title: "extra", Content: "c", Author: "a", Source: "s"}))
		}
		start := time.Now()
		must(repo.List(ctx))
		out = append(out, time.Since(start))
	}

	res := scenarioResult{durations: out}
	if pc != nil {
		h, m := pc.Stats()
		res.hits, res.misses = h-h0, m-m0
	}
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		res.memoryBytes = parseUsedMemory(info)
	}
	return res
}

func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
