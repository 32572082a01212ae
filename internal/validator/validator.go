package validator

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// Reason 表示 URL 被拒绝的类型化原因码
type Reason string

const (
	// ReasonEmpty 输入为空或仅包含空白字符
	ReasonEmpty Reason = "EMPTY"
	// ReasonMalformed 无法解析为绝对 URL
	ReasonMalformed Reason = "MALFORMED"
	// ReasonBadProtocol 协议不是 https
	ReasonBadProtocol Reason = "BAD_PROTOCOL"
	// ReasonLocalOrExample 本地地址或保留测试域名
	ReasonLocalOrExample Reason = "LOCAL_OR_EXAMPLE"
	// ReasonPrivateIP 私有网段 IP 地址
	ReasonPrivateIP Reason = "PRIVATE_IP"
	// ReasonBadHostname 主机名不符合域名语法
	ReasonBadHostname Reason = "BAD_HOSTNAME"
	// ReasonBadPort 显式端口且不是 443
	ReasonBadPort Reason = "BAD_PORT"
)

var reasonMessages = map[Reason]string{
	ReasonEmpty:          "URL 不能为空",
	ReasonMalformed:      "URL 结构不合法",
	ReasonBadProtocol:    "协议必须是 HTTPS",
	ReasonLocalOrExample: "不允许本地或示例域名",
	ReasonPrivateIP:      "不允许私有 IP 地址",
	ReasonBadHostname:    "域名不合法",
	ReasonBadPort:        "不允许非安全端口",
}

// Message 返回原因码对应的用户可见提示
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Result 是校验结果：要么接受并给出规范化后的 URL，要么携带拒绝原因。
// 错误以数据形式返回，校验过程永不 panic。
type Result struct {
	OK         bool
	Normalized string
	Reason     Reason
}

// 主机名语法：点分标签，每段 1~63 个字母/数字/连字符，首尾不能是连字符
var hostnameRegexp = regexp.MustCompile(
	`^([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9])(\.([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9]))*$`)

// Punycode（ACE）形式的主机名
var punycodeRegexp = regexp.MustCompile(`^xn--[a-zA-Z0-9-]+$`)

// reject 构造拒绝结果
func reject(reason Reason) Result {
	return Result{OK: false, Reason: reason}
}

// Validate 判定一个不可信的输入字符串是否是可接受的跳转目标，并做规范化。
//
// 规则按顺序短路：
//  1. 空输入 / 纯空白 -> EMPTY
//  2. 非绝对 URL -> MALFORMED
//  3. 协议非 https -> BAD_PROTOCOL
//  4. 本地地址或保留测试域名（主机名先转小写）-> LOCAL_OR_EXAMPLE
//  5. 私有网段 IP -> PRIVATE_IP
//  6. 主机名语法 -> BAD_HOSTNAME
//  7. 显式端口非 443 -> BAD_PORT
//
// 接受时返回规范化串：小写主机名，非 ASCII 主机转 Punycode，去掉默认端口，
// 空路径补 "/"。对已规范化的输出再次校验会得到完全相同的结果（幂等）。
func Validate(input string) Result {
	if strings.TrimSpace(input) == "" {
		return reject(ReasonEmpty)
	}

	trimmed := strings.TrimSpace(input)

	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return reject(ReasonMalformed)
	}

	if u.Scheme != "https" {
		return reject(ReasonBadProtocol)
	}

	hostname := strings.ToLower(u.Hostname())
	if isLocalOrExampleHost(hostname) {
		return reject(ReasonLocalOrExample)
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			return reject(ReasonPrivateIP)
		}
	}

	asciiHost, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		// 主机名含 IP 字面量或非法字符时 idna 会报错，
		// 交给下面的语法检查统一给出 BAD_HOSTNAME
		asciiHost = hostname
	}
	if !hostnameRegexp.MatchString(asciiHost) && !punycodeRegexp.MatchString(asciiHost) {
		return reject(ReasonBadHostname)
	}

	if port := u.Port(); port != "" && port != "443" {
		return reject(ReasonBadPort)
	}

	return Result{OK: true, Normalized: normalize(u, asciiHost)}
}

// isLocalOrExampleHost 判断主机名是否属于本地地址或保留测试域名
func isLocalOrExampleHost(hostname string) bool {
	switch hostname {
	case "localhost", "127.0.0.1", "::1", "example.com", "test.com":
		return true
	}
	return strings.HasSuffix(hostname, ".localhost") ||
		strings.HasSuffix(hostname, ".local") ||
		strings.HasSuffix(hostname, ".example.com") ||
		strings.HasSuffix(hostname, ".test.com")
}

// normalize 按严格序列化规则重建 URL 字符串
func normalize(u *url.URL, asciiHost string) string {
	var b strings.Builder
	b.WriteString("https://")

	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}

	b.WriteString(asciiHost)

	// 默认端口 443 不回写

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	b.WriteString(path)

	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}

	return b.String()
}
