package util

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/proxy"
	"panbot/config"
)

// DefaultUserAgent 未指定时使用的浏览器标识
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// 全局HTTP客户端
var httpClient *http.Client

// InitHTTPClient 按全局配置初始化HTTP客户端
func InitHTTPClient() {
	timeout := 10 * time.Second
	proxyURL := ""
	if config.AppConfig != nil {
		timeout = config.AppConfig.HTTPTimeout
		if config.AppConfig.UseProxy {
			proxyURL = config.AppConfig.ProxyURL
		}
	}
	httpClient = NewHTTPClient(timeout, proxyURL)
}

// GetHTTPClient 获取HTTP客户端
func GetHTTPClient() *http.Client {
	if httpClient == nil {
		InitHTTPClient()
	}
	return httpClient
}

// NewHTTPClient 创建带超时和可选代理的HTTP客户端
func NewHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{
		ForceAttemptHTTP2: true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},

		// 连接池
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if proxyURL != "" {
		applyProxy(transport, proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// applyProxy 根据代理类型设置拨号器或HTTP代理
func applyProxy(transport *http.Transport, rawURL string) {
	proxyURL, err := url.Parse(rawURL)
	if err != nil {
		log.Warn().Err(err).Str("proxy", rawURL).Msg("代理地址无效，已忽略")
		return
	}

	if proxyURL.Scheme != "socks5" {
		transport.Proxy = http.ProxyURL(proxyURL)
		return
	}

	dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
	if err != nil {
		log.Warn().Err(err).Str("proxy", rawURL).Msg("创建SOCKS5拨号器失败，已忽略")
		return
	}
	if ctxDialer, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = ctxDialer.DialContext
		return
	}
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
}

// NoRedirectClient 返回不跟随重定向的客户端副本，3xx响应原样返回
func NoRedirectClient(client *http.Client) *http.Client {
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

// ReadBody 读取并关闭响应体
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}
	return body, nil
}

// base64Encodings 依次尝试的编码：标准字母表优先，其次URL安全字母表
var base64Encodings = []struct {
	enc      *base64.Encoding
	unpadded bool
}{
	{base64.StdEncoding, false},
	{base64.RawStdEncoding, true},
	{base64.URLEncoding, false},
	{base64.RawURLEncoding, true},
}

// DecodeBase64Body 解码base64包装的响应体
func DecodeBase64Body(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)

	var firstErr error
	for _, candidate := range base64Encodings {
		input := trimmed
		if candidate.unpadded {
			// 部分响应省略了结尾的填充字符
			input = bytes.TrimRight(trimmed, "=")
		}
		decoded := make([]byte, candidate.enc.DecodedLen(len(input)))
		n, err := candidate.enc.Decode(decoded, input)
		if err == nil {
			return decoded[:n], nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("base64 decode failed: %w", firstErr)
}
