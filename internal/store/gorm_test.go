package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shortlink-platform/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupStore 初始化内存数据库和存储实例
func setupStore(t *testing.T) *GormLinkStore {
	t.Helper()

	// 每个测试用独立的命名内存库，避免连接池拿到不同的空库或测试间串数据
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("无法连接到内存数据库: %v", err)
	}
	if err := db.AutoMigrate(&model.Link{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewGormLinkStore(db)
}

// newTestLink 构造一条测试链接
func newTestLink(slug string) *model.Link {
	return &model.Link{
		ID:        uuid.NewString(),
		URL:       "https://target.dev/" + slug,
		Slug:      slug,
		ShortLink: "https://sho.rt/" + slug,
	}
}

func TestGormLinkStore_InsertAndFind(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	link := newTestLink("golang")
	assert.NoError(t, s.Insert(ctx, link))

	found, err := s.FindBySlug(ctx, "golang")
	assert.NoError(t, err)
	assert.Equal(t, link.ID, found.ID)
	assert.Equal(t, "https://target.dev/golang", found.URL)
	assert.Equal(t, int64(0), found.ClickCount)
	assert.False(t, found.CreatedAt.IsZero(), "创建时间应被自动填充")
}

func TestGormLinkStore_FindBySlug_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.FindBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

// slug 唯一索引：重复插入必须失败，且不改变已有记录
func TestGormLinkStore_Insert_DuplicateSlug(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, newTestLink("dup")))

	dup := newTestLink("dup")
	dup.URL = "https://other.dev/"
	assert.Error(t, s.Insert(ctx, dup))

	found, err := s.FindBySlug(ctx, "dup")
	assert.NoError(t, err)
	assert.Equal(t, "https://target.dev/dup", found.URL)
}

func TestGormLinkStore_IncrementClickCount(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, newTestLink("clicky")))

	for i := 1; i <= 3; i++ {
		updated, err := s.IncrementClickCount(ctx, "clicky")
		assert.NoError(t, err)
		assert.Equal(t, int64(i), updated.ClickCount)
	}
}

func TestGormLinkStore_IncrementClickCount_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.IncrementClickCount(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestGormLinkStore_ExistsBySlug(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	exists, err := s.ExistsBySlug(ctx, "taken")
	assert.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.Insert(ctx, newTestLink("taken")))

	exists, err = s.ExistsBySlug(ctx, "taken")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestGormLinkStore_ListPage(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	// 按时间递增插入，便于断言倒序
	for i := 0; i < 5; i++ {
		link := newTestLink(fmt.Sprintf("page-%d", i))
		link.CreatedAt = time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC)
		assert.NoError(t, s.Insert(ctx, link))
	}
	other := newTestLink("unrelated")
	other.CreatedAt = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, s.Insert(ctx, other))

	// 第一页：最新的在前
	links, total, err := s.ListPage(ctx, 1, 2, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, links, 2)
	assert.Equal(t, "page-4", links[0].Slug)
	assert.Equal(t, "page-3", links[1].Slug)

	// 第二页
	links, _, err = s.ListPage(ctx, 2, 2, "")
	assert.NoError(t, err)
	assert.Equal(t, "page-2", links[0].Slug)

	// slug 子串过滤
	links, total, err = s.ListPage(ctx, 1, 10, "page-")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, links, 5)

	// 过滤无命中
	links, total, err = s.ListPage(ctx, 1, 10, "nothing")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, links)

	// 非法分页参数回退到默认值
	links, _, err = s.ListPage(ctx, 0, 0, "")
	assert.NoError(t, err)
	assert.Len(t, links, 6)
}

func TestGormLinkStore_Stats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	totalLinks, totalClicks, err := s.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), totalLinks)
	assert.Equal(t, int64(0), totalClicks)

	assert.NoError(t, s.Insert(ctx, newTestLink("a")))
	assert.NoError(t, s.Insert(ctx, newTestLink("b")))
	_, err = s.IncrementClickCount(ctx, "a")
	assert.NoError(t, err)
	_, err = s.IncrementClickCount(ctx, "a")
	assert.NoError(t, err)
	_, err = s.IncrementClickCount(ctx, "b")
	assert.NoError(t, err)

	totalLinks, totalClicks, err = s.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), totalLinks)
	assert.Equal(t, int64(3), totalClicks)
}
