package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"shortlink-platform/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 不参与 slug 解析的系统路径
var reservedPaths = map[string]struct{}{
	"/":                  {},
	"/health":            {},
	"/favicon.ico":       {},
	"/robots.txt":        {},
	"/sitemap-index.xml": {},
	"/sitemap-0.xml":     {},
}

// 已注册路由的前缀，同样直接放行
var reservedPrefixes = []string{
	"/api/",
	"/auth/",
	"/static/",
	"/swagger/",
}

// SlugRedirect 拦截所有入站请求并尝试按 slug 跳转。
//
// 每个请求走一遍状态机：
//   - 取路径最后一段作为候选 slug；空、根路径或纯空白 -> 放行给后续路由
//   - 系统保留路径 -> 放行
//   - 查库未命中或存储出错 -> 302 跳转回首页（绝不让访客看到错误页）
//   - 命中 -> 先把点击数加一（失败只记日志，不阻止跳转），再 302 到目标 URL
//
// 存储中的 URL 在跳转时已解析不出绝对 URL 属于数据损坏，记错误日志并返回 500。
func SlugRedirect(links store.LinkStore, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.EscapedPath()
		if isReservedPath(path) {
			c.Next()
			return
		}

		slug := ExtractSlug(path)
		if slug == "" {
			c.Next()
			return
		}

		link, err := links.FindBySlug(c.Request.Context(), slug)
		if err != nil {
			if !errors.Is(err, store.ErrLinkNotFound) {
				logger.Warnf("查找 slug 失败，回退到首页: slug=%s err=%v", slug, err)
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		// 先计数后跳转；丢失的计数可以容忍，失败的跳转不可以
		if _, err := links.IncrementClickCount(c.Request.Context(), slug); err != nil {
			logger.Warnf("更新点击数失败: slug=%s err=%v", slug, err)
		}

		if target, err := url.Parse(link.URL); err != nil || !target.IsAbs() {
			logger.Errorf("存储的目标 URL 无法解析: slug=%s url=%q err=%v", slug, link.URL, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Redirect(http.StatusFound, link.URL)
		c.Abort()
	}
}

// ExtractSlug 从转义后的请求路径中提取候选 slug。
// 取最后一段，含百分号编码时解码一次；解码后为空或纯空白返回空串。
func ExtractSlug(escapedPath string) string {
	segments := strings.Split(escapedPath, "/")
	last := segments[len(segments)-1]

	if strings.Contains(last, "%") {
		if decoded, err := url.PathUnescape(last); err == nil {
			last = decoded
		}
	}

	if last == "/" || strings.TrimSpace(last) == "" {
		return ""
	}
	return last
}

// isReservedPath 判断路径是否属于系统保留路径
func isReservedPath(path string) bool {
	if _, ok := reservedPaths[path]; ok {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
