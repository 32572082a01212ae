package slug

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"shortlink-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Charset 包含用于生成随机 slug 的所有字符
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length 是随机生成的 slug 长度
	Length = 7
	// ChannelBufferSize 是 slug 通道的缓冲区大小
	ChannelBufferSize = 1000
	// MinFillThreshold 是触发补充的最小阈值
	MinFillThreshold = 100
)

// Generator 在后台预生成数据库中未被占用的随机 slug。
// 用户创建短链接时没有自选 slug，就从这里取一个。
type Generator struct {
	db        *gorm.DB
	slugChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopChan  chan struct{}
	logger    *zap.SugaredLogger
}

// NewGenerator 创建一个新的 slug 生成器实例
func NewGenerator(db *gorm.DB, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		db:       db,
		slugChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("slug_generator"),
	}
}

// Start 启动后台生成和补充任务
func (g *Generator) Start() {
	g.logger.Info("启动 slug 生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止生成器
func (g *Generator) Stop() {
	g.logger.Info("正在停止 slug 生成器...")
	close(g.stopChan)
}

// Next 从通道中获取一个未被占用的随机 slug
func (g *Generator) Next() string {
	return <-g.slugChan
}

// monitorAndRefill 监视通道的填充水平并根据需要进行补充
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.slugChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成随机 slug 并填充通道
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	g.logger.Infof("通道中剩余 %d 个 slug，开始补充...", len(g.slugChan))
	for len(g.slugChan) < ChannelBufferSize {
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		default:
			candidate, err := g.generateUniqueSlug()
			if err != nil {
				g.logger.Errorf("生成唯一 slug 时出错: %v", err)
				time.Sleep(100 * time.Millisecond) // 避免在错误情况下快速循环
				continue
			}
			if candidate != "" {
				g.slugChan <- candidate
			}
		}
	}
	g.logger.Infof("slug 通道已填满，现有 %d 个。", len(g.slugChan))
}

// generateUniqueSlug 生成一个在 links 表中未被占用的随机 slug
func (g *Generator) generateUniqueSlug() (string, error) {
	for i := 0; i < 10; i++ {
		candidate, err := RandomSlug(Length)
		if err != nil {
			return "", err
		}
		if !g.isSlugTaken(candidate) {
			return candidate, nil
		}
	}
	g.logger.Warn("已尝试10次生成 slug，但均存在冲突。")
	return "", nil // 返回空字符串表示需要重试
}

// RandomSlug 使用加密安全的随机数生成器生成一个给定长度的 slug
func RandomSlug(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Charset))))
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}

// isSlugTaken 检查给定的 slug 是否已在数据库中存在
func (g *Generator) isSlugTaken(candidate string) bool {
	var count int64
	if err := g.db.Model(&model.Link{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
		g.logger.Errorf("查询数据库时出错: %v", err)
		// 在不确定的情况下，保守地认为它已被占用以避免冲突
		return true
	}
	return count > 0
}
