package store

import (
	"context"
	"errors"
	"fmt"

	"shortlink-platform/internal/model"

	"gorm.io/gorm"
)

// GormLinkStore 基于 gorm 的 LinkStore 实现
type GormLinkStore struct {
	db *gorm.DB
}

// NewGormLinkStore 创建 gorm 存储实例
func NewGormLinkStore(db *gorm.DB) *GormLinkStore {
	return &GormLinkStore{db: db}
}

// FindBySlug 按 slug 精确查找链接
func (s *GormLinkStore) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	var link model.Link
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	return &link, nil
}

// IncrementClickCount 点击数加一。
// 单条 UPDATE，不做读-改-写事务：并发点击可能丢失更新，属于接受的弱一致行为。
func (s *GormLinkStore) IncrementClickCount(ctx context.Context, slug string) (*model.Link, error) {
	result := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("slug = ?", slug).
		Update("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("更新点击数失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLinkNotFound
	}
	return s.FindBySlug(ctx, slug)
}

// Insert 插入一条新链接
func (s *GormLinkStore) Insert(ctx context.Context, link *model.Link) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("创建链接失败: %w", err)
	}
	return nil
}

// ExistsBySlug 判断 slug 是否已被占用
func (s *GormLinkStore) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询 slug 占用失败: %w", err)
	}
	return count > 0, nil
}

// ListPage 分页查询，按创建时间倒序，slugFilter 做子串匹配
func (s *GormLinkStore) ListPage(ctx context.Context, page, limit int, slugFilter string) ([]model.Link, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	countQuery := s.db.WithContext(ctx).Model(&model.Link{})
	listQuery := s.db.WithContext(ctx).Model(&model.Link{})
	if slugFilter != "" {
		pattern := "%" + slugFilter + "%"
		countQuery = countQuery.Where("slug LIKE ?", pattern)
		listQuery = listQuery.Where("slug LIKE ?", pattern)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计链接总数失败: %w", err)
	}

	var links []model.Link
	if err := listQuery.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&links).Error; err != nil {
		return nil, 0, fmt.Errorf("分页查询链接失败: %w", err)
	}

	return links, total, nil
}

// Stats 返回链接总数与点击总数
func (s *GormLinkStore) Stats(ctx context.Context) (int64, int64, error) {
	var totalLinks int64
	if err := s.db.WithContext(ctx).Model(&model.Link{}).Count(&totalLinks).Error; err != nil {
		return 0, 0, fmt.Errorf("统计链接总数失败: %w", err)
	}

	var totalClicks int64
	if err := s.db.WithContext(ctx).Model(&model.Link{}).
		Select("COALESCE(SUM(click_count), 0)").Scan(&totalClicks).Error; err != nil {
		return 0, 0, fmt.Errorf("统计点击总数失败: %w", err)
	}

	return totalLinks, totalClicks, nil
}
