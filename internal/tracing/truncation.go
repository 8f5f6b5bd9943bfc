package tracing

import (
	"strings"
)

const (
	// MaxContentLength 简历正文类属性的最大长度
	MaxContentLength = 150

	// MaxQueryLength 检索查询文本的最大长度
	MaxQueryLength = 100
)

// piiAttrKeys 属性名中出现这些关键字时，属性值需要掩码处理。
// 简历数据几乎全是个人信息，入span前必须过这一层。
var piiAttrKeys = []string{
	"name", "姓名",
	"email",
	"phone",
	"linkedin",
	"github",
	"address", "地址",
}

// SafeAttributeValue 处理将写入span的属性值：
// 命中PII关键字的掩码，其余的按maxLength截断。
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiAttrKeys {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 对个人敏感信息进行掩码，保留首尾便于排查问题。
// "张三" -> "张*"，"13812345678" -> "13*******78"
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)

	switch {
	case length <= 1:
		return "*"
	case length == 2:
		return string(runes[0:1]) + "*"
	case length <= 4:
		return string(runes[0:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	default:
		return string(runes[0:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
	}
}

// TruncateString 按rune截断，保留首尾、中间以...连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}
