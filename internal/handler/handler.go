package handler

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shortlink-platform/internal/config"
	"shortlink-platform/internal/model"
	"shortlink-platform/internal/qrcode"
	"shortlink-platform/internal/store"
	"shortlink-platform/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlugSource 提供随机 slug，由后台生成器实现
type SlugSource interface {
	Next() string
}

// ShortLinkHandler 处理器
type ShortLinkHandler struct {
	links  store.LinkStore
	slugs  SlugSource
	appCfg *config.App
}

// NewShortLinkHandler 创建处理器实例
func NewShortLinkHandler(links store.LinkStore, slugs SlugSource, appCfg *config.App) *ShortLinkHandler {
	return &ShortLinkHandler{
		links:  links,
		slugs:  slugs,
		appCfg: appCfg,
	}
}

// IndexPage 根路径返回服务信息（页面渲染不在本服务范围内）
func (h *ShortLinkHandler) IndexPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    h.appCfg.Name,
		"version": h.appCfg.Version,
	})
}

// HealthCheck 健康检查
func (h *ShortLinkHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// CreateShortLinkRequest 创建短链接的请求体
type CreateShortLinkRequest struct {
	URL  string `json:"url" example:"https://github.com/gin-gonic/gin"`
	Slug string `json:"slug" example:"gin"`
}

// slug 约束：1~10 位字母/数字/连字符/下划线
var slugRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,10}$`)

// CreateShortLink godoc
// @Summary 创建短链接
// @Description 为一个长 URL 创建指定 slug 的短链接，并生成二维码
// @Tags ShortLink
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body   CreateShortLinkRequest  true  "目标 URL 与自选 slug"
// @Success 201 {object} gin.H "成功响应"
// @Failure 400 {object} gin.H "请求无效"
// @Failure 409 {object} gin.H "slug 已被占用"
// @Router /api/shorten [post]
func (h *ShortLinkHandler) CreateShortLink(c *gin.Context) {
	var req CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求数据: "+err.Error())
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		badRequest(c, "URL 不能为空")
		return
	}

	// 没有自选 slug 时随机生成一个
	if req.Slug == "" {
		if h.slugs == nil {
			badRequest(c, "slug 不能为空")
			return
		}
		req.Slug = h.slugs.Next()
	}

	if !slugRegexp.MatchString(req.Slug) {
		badRequest(c, "slug 只能包含字母、数字、连字符或下划线，长度 1~10")
		return
	}

	origin, ok := h.resolveOrigin(c)
	if !ok {
		badRequest(c, "无法从请求来源确定短链接前缀")
		return
	}

	exists, err := h.links.ExistsBySlug(c.Request.Context(), req.Slug)
	if err != nil {
		badRequest(c, "查询 slug 占用失败")
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"code":    "CONFLICT",
			"error":   "该 slug 已被占用",
		})
		return
	}

	// 服务端强制校验跳转目标，不信任客户端的表单校验
	result := validator.Validate(req.URL)
	if !result.OK {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    "BAD_REQUEST",
			"reason":  string(result.Reason),
			"error":   result.Reason.Message(),
		})
		return
	}

	shortLink := origin + "/" + req.Slug

	// 二维码生成失败只降级为无二维码，不阻止创建
	qrURI, err := qrcode.DataURI(shortLink)
	if err != nil {
		zap.S().Warnf("生成二维码失败: slug=%s err=%v", req.Slug, err)
		qrURI = ""
	}

	link := model.Link{
		ID:        uuid.NewString(),
		URL:       result.Normalized,
		Slug:      req.Slug,
		ShortLink: shortLink,
		QRCode:    qrURI,
	}
	if err := h.links.Insert(c.Request.Context(), &link); err != nil {
		zap.S().Errorf("创建链接失败: slug=%s err=%v", req.Slug, err)
		badRequest(c, "创建链接失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    link,
	})
}

// resolveOrigin 确定短链接的公共前缀。
// 生产模式取请求的 referer 来源，其余模式用配置的 base_url。
func (h *ShortLinkHandler) resolveOrigin(c *gin.Context) (string, bool) {
	if h.appCfg.Mode != "production" {
		return strings.TrimSuffix(h.appCfg.BaseURL, "/"), h.appCfg.BaseURL != ""
	}

	referer := c.GetHeader("Referer")
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

// PaginatedLinksResponse 分页查询响应
type PaginatedLinksResponse struct {
	Links           []model.Link `json:"links"`
	TotalLinks      int64        `json:"total_links"`
	TotalPages      int64        `json:"total_pages"`
	CurrentPage     int          `json:"current_page"`
	HasNextPage     bool         `json:"has_next_page"`
	HasPreviousPage bool         `json:"has_previous_page"`
}

// GetLinks godoc
// @Summary 分页获取链接列表
// @Description 按创建时间倒序分页返回链接，可用 slug 子串过滤
// @Tags ShortLink
// @Security ApiKeyAuth
// @Produce  json
// @Param   page   query  int     false  "页码，默认 1"
// @Param   limit  query  int     false  "每页条数，默认 10"
// @Param   slug   query  string  false  "slug 子串过滤"
// @Success 200 {object} PaginatedLinksResponse "成功响应"
// @Failure 500 {object} gin.H "服务器内部错误"
// @Router /api/links [get]
func (h *ShortLinkHandler) GetLinks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	slugFilter := c.Query("slug")

	links, total, err := h.links.ListPage(c.Request.Context(), page, limit, slugFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取链接失败"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, PaginatedLinksResponse{
		Links:           links,
		TotalLinks:      total,
		TotalPages:      totalPages,
		CurrentPage:     page,
		HasNextPage:     int64(page) < totalPages,
		HasPreviousPage: page > 1,
	})
}

// GetStats godoc
// @Summary 获取统计信息
// @Description 返回链接总数与点击总数
// @Tags ShortLink
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} gin.H "成功响应"
// @Router /api/stats [get]
func (h *ShortLinkHandler) GetStats(c *gin.Context) {
	totalLinks, totalClicks, err := h.links.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计信息失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_links":  totalLinks,
		"total_clicks": totalClicks,
	})
}

// badRequest 统一的 400 响应
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"code":    "BAD_REQUEST",
		"error":   message,
	})
}
