package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidate_Accepted 合法 URL 应被接受并规范化
func TestValidate_Accepted(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		normalized string
	}{
		{"普通域名", "https://github.com/gin-gonic/gin", "https://github.com/gin-gonic/gin"},
		{"空路径补斜杠", "https://github.com", "https://github.com/"},
		{"主机名转小写", "https://GitHub.COM/Path", "https://github.com/Path"},
		{"默认端口被去掉", "https://github.com:443/path", "https://github.com/path"},
		{"首尾空白被去掉", "  https://github.com/  ", "https://github.com/"},
		{"保留查询参数", "https://github.com/search?q=gin&lang=go", "https://github.com/search?q=gin&lang=go"},
		{"保留锚点", "https://github.com/page#section", "https://github.com/page#section"},
		{"公网 IP", "https://8.8.8.8/dns", "https://8.8.8.8/dns"},
		{"Punycode 域名", "https://xn--fiqs8s/", "https://xn--fiqs8s/"},
		{"非 ASCII 主机转 ACE", "https://пример.рф/путь", "https://xn--e1afmkfd.xn--p1ai/%D0%BF%D1%83%D1%82%D1%8C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			assert.True(t, result.OK, "应被接受: %s", tt.input)
			assert.Equal(t, tt.normalized, result.Normalized)
		})
	}
}

// TestValidate_Idempotent 对规范化输出再次校验必须得到相同的字符串
func TestValidate_Idempotent(t *testing.T) {
	inputs := []string{
		"https://github.com",
		"https://GitHub.COM:443/Path?a=1#top",
		"https://пример.рф/страница",
		"  https://a-b.co/x  ",
	}

	for _, input := range inputs {
		first := Validate(input)
		assert.True(t, first.OK)

		second := Validate(first.Normalized)
		assert.True(t, second.OK)
		assert.Equal(t, first.Normalized, second.Normalized, "幂等性被破坏: %s", input)
	}
}

// TestValidate_Rejected 各类非法输入应返回对应的原因码
func TestValidate_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason Reason
	}{
		{"空字符串", "", ReasonEmpty},
		{"纯空白", "   \t  ", ReasonEmpty},
		{"非绝对 URL", "not a url", ReasonMalformed},
		{"非法协议字符", "ht!tp://bad", ReasonMalformed},
		{"缺少主机", "https://", ReasonMalformed},
		{"http 协议", "http://github.com", ReasonBadProtocol},
		{"ftp 协议", "ftp://files.com", ReasonBadProtocol},
		{"file 协议", "file:///etc/passwd", ReasonBadProtocol},
		{"localhost", "https://localhost/path", ReasonLocalOrExample},
		{"localhost 子域", "https://dev.localhost/", ReasonLocalOrExample},
		{"local 后缀", "https://printer.local/", ReasonLocalOrExample},
		{"IPv4 回环", "https://127.0.0.1/", ReasonLocalOrExample},
		{"IPv6 回环", "https://[::1]/", ReasonLocalOrExample},
		{"example.com", "https://example.com/page", ReasonLocalOrExample},
		{"example.com 子域", "https://www.example.com/", ReasonLocalOrExample},
		{"test.com", "https://test.com/", ReasonLocalOrExample},
		{"10 网段", "https://10.0.0.5/", ReasonPrivateIP},
		{"172.16 网段", "https://172.16.1.1/", ReasonPrivateIP},
		{"172.31 网段", "https://172.31.255.254/", ReasonPrivateIP},
		{"192.168 网段", "https://192.168.1.1/admin", ReasonPrivateIP},
		{"127 网段非回环地址形式", "https://127.0.0.2/", ReasonPrivateIP},
		{"链路本地地址", "https://169.254.1.1/", ReasonPrivateIP},
		{"IPv6 唯一本地地址", "https://[fc00::1]/", ReasonPrivateIP},
		{"IPv6 fd00 前缀", "https://[fd00::1]/", ReasonPrivateIP},
		{"主机名带下划线", "https://bad_host.com/", ReasonBadHostname},
		{"标签以连字符开头", "https://-abc.com/", ReasonBadHostname},
		{"非文档 IPv6 字面量", "https://[2001:db8::1]/", ReasonBadHostname},
		{"非 443 端口", "https://github.com:8080/", ReasonBadPort},
		{"80 端口", "https://github.com:80/", ReasonBadPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			assert.False(t, result.OK, "应被拒绝: %s", tt.input)
			assert.Equal(t, tt.reason, result.Reason)
			assert.Empty(t, result.Normalized)
			assert.NotEmpty(t, result.Reason.Message())
		})
	}
}

// TestValidate_NormalizationBeforeReservedCheck 主机名规范化发生在保留域名检查之前
func TestValidate_NormalizationBeforeReservedCheck(t *testing.T) {
	result := Validate("https://www.Example.COM:443/Path")
	assert.False(t, result.OK)
	assert.Equal(t, ReasonLocalOrExample, result.Reason)
}
