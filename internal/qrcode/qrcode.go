package qrcode

import (
	"encoding/base64"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// 生成的二维码图片边长（像素）
const imageSize = 256

// DataURI 将短链接编码为 PNG 二维码并返回 data URI 字符串，
// 可直接作为 <img> 的 src 存库。
func DataURI(content string) (string, error) {
	png, err := qr.Encode(content, qr.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("生成二维码失败: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
