package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
)

// CalculateMD5 计算字节切片的MD5摘要（十六进制小写）
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// CalculateMD5FromReader 流式计算MD5，返回摘要和读取的字节数
func CalculateMD5FromReader(reader io.Reader) (string, int64, error) {
	hasher := md5.New()
	n, err := io.Copy(hasher, reader)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}
