package store

import (
	"context"
	"errors"

	"shortlink-platform/internal/model"
)

// ErrLinkNotFound 表示 slug 没有对应记录。
// 与其他存储错误区分开，调用方才能分辨 “未命中” 和 “存储不可用”。
var ErrLinkNotFound = errors.New("链接不存在")

// LinkStore 是链接持久化的窄接口。
// 重定向解析器和创建流程只通过它访问数据库，测试时可替换为桩实现。
type LinkStore interface {
	// FindBySlug 按 slug 精确查找链接，未命中返回 ErrLinkNotFound
	FindBySlug(ctx context.Context, slug string) (*model.Link, error)
	// IncrementClickCount 将指定 slug 的点击数加一，返回更新后的记录
	IncrementClickCount(ctx context.Context, slug string) (*model.Link, error)
	// Insert 插入一条新链接，slug 冲突时返回存储层错误
	Insert(ctx context.Context, link *model.Link) error
	// ExistsBySlug 判断 slug 是否已被占用
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// ListPage 按创建时间倒序分页查询，slugFilter 为子串过滤，返回本页记录和总数
	ListPage(ctx context.Context, page, limit int, slugFilter string) ([]model.Link, int64, error)
	// Stats 返回链接总数与点击总数
	Stats(ctx context.Context) (totalLinks, totalClicks int64, err error)
}
