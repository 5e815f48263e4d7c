package catso

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"regexp"
)

const (
	// AESKey 站点前端脚本使用的固定密钥
	AESKey = "1234567812345678"
	// AESIV 固定向量，与密钥相同
	AESIV = "1234567812345678"

	// ChallengeCookieName 挑战Cookie名称
	ChallengeCookieName = "ck_ml_sea_"
)

var challengePattern = regexp.MustCompile(`start_load\("([a-fA-F0-9]+)"\)`)

// ExtractChallengeToken 从页面中提取 start_load 挑战令牌
func ExtractChallengeToken(html string) (string, bool) {
	match := challengePattern.FindStringSubmatch(html)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// HasChallenge 页面是否携带挑战标记
func HasChallenge(html string) bool {
	return challengePattern.MatchString(html)
}

// EncryptToken 使用AES-128-CBC加密令牌并返回十六进制密文
func EncryptToken(token string) (string, error) {
	block, err := aes.NewCipher([]byte(AESKey))
	if err != nil {
		return "", fmt.Errorf("创建AES加密器失败: %w", err)
	}

	iv := []byte(AESIV)
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("IV长度不正确: 期望%d，实际%d", aes.BlockSize, len(iv))
	}

	plaintext := addPKCS7Padding([]byte(token), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return hex.EncodeToString(ciphertext), nil
}

// ChallengeCookie 根据挑战令牌计算Cookie键值对
func ChallengeCookie(token string) (string, error) {
	value, err := EncryptToken(token)
	if err != nil {
		return "", err
	}
	return ChallengeCookieName + "=" + value, nil
}

// addPKCS7Padding 添加PKCS7填充
func addPKCS7Padding(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}
