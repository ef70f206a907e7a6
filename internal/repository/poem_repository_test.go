package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/daily-poem/internal/model"
	"github.com/d60-Lab/daily-poem/internal/testutil"
)

func newRepo(t *testing.T) PoemRepository {
	t.Helper()
	return NewPoemRepository(testutil.NewTestDB(t))
}

func TestCreateThenGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p := &model.Poem{Title: "Ghazal 1", Content: "line one\nline two", Author: "Hafez", Source: "Divan", IsPosted: true}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ghazal 1", got.Title)
	assert.Equal(t, "line one\nline two", got.Content)
	assert.Equal(t, "Hafez", got.Author)
	assert.Equal(t, "Divan", got.Source)
	assert.False(t, got.IsPosted, "new poems start unposted")
}

func TestCreate_IDsAreUnique(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	seen := map[uint]bool{}
	for i := 0; i < 5; i++ {
		p := testutil.NewPoem(fmt.Sprintf("p%d", i))
		require.NoError(t, repo.Create(ctx, p))
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMany(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	poems := make([]*model.Poem, 0, 250)
	for i := 0; i < 250; i++ {
		poems = append(poems, testutil.NewPoem(fmt.Sprintf("bulk-%d", i)))
	}
	n, err := repo.CreateMany(ctx, poems)
	require.NoError(t, err)
	assert.EqualValues(t, 250, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 250)

	n, err = repo.CreateMany(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplace(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p := testutil.NewPoem("old")
	require.NoError(t, repo.Create(ctx, p))

	posted := true
	require.NoError(t, repo.Replace(ctx, p.ID, model.PoemFields{
		Title: "new", Content: "new content", Author: "Saadi", Source: "Golestan", IsPosted: &posted,
	}))
	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "Saadi", got.Author)
	assert.True(t, got.IsPosted)

	// 未传 is_posted 时保留原值
	require.NoError(t, repo.Replace(ctx, p.ID, model.PoemFields{
		Title: "newer", Content: "c", Author: "a", Source: "s",
	}))
	got, err = repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Title)
	assert.True(t, got.IsPosted)

	err = repo.Replace(ctx, 9999, model.PoemFields{Title: "x", Content: "x", Author: "x", Source: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p := testutil.NewPoem("gone")
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)
}

func TestMarkPostedAndListUnposted(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, b := testutil.NewPoem("a"), testutil.NewPoem("b")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.MarkPosted(ctx, a.ID))

	unposted, err := repo.ListUnposted(ctx)
	require.NoError(t, err)
	require.Len(t, unposted, 1)
	assert.Equal(t, b.ID, unposted[0].ID)

	assert.ErrorIs(t, repo.MarkPosted(ctx, 777), ErrNotFound)
}

func TestResetPosted(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		p := testutil.NewPoem(fmt.Sprintf("r%d", i))
		require.NoError(t, repo.Create(ctx, p))
		if i%2 == 0 {
			require.NoError(t, repo.MarkPosted(ctx, p.ID))
		}
	}

	n, err := repo.ResetPosted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	for _, p := range all {
		assert.False(t, p.IsPosted, "poem %d still posted", p.ID)
	}

	// 没有已发布条目时重置也不报错
	n, err = repo.ResetPosted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func BenchmarkListUnposted(b *testing.B) {
	db := testutil.NewTestDB(b)
	repo := NewPoemRepository(db)
	ctx := context.Background()

	const N = 5000
	poems := make([]*model.Poem, N)
	for i := range poems {
		poems[i] = testutil.NewPoem(fmt.Sprintf("p%05d", i))
	}
	if _, err := repo.CreateMany(ctx, poems); err != nil {
		b.Fatalf("seed: %v", err)
	}
	for i := 0; i < N; i += 2 {
		_ = repo.MarkPosted(ctx, poems[i].ID)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = repo.ListUnposted(ctx)
	}
}
