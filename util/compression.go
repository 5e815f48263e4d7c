package util

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 缓冲响应的包装器，处理完成后再决定是否压缩
type bufferedResponseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

// Write 写入缓冲区
func (w *bufferedResponseWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}

// WriteString 写入缓冲区
func (w *bufferedResponseWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// WriteHeader 记录状态码，延迟到真正输出时写入
func (w *bufferedResponseWriter) WriteHeader(code int) {
	w.status = code
}

// Status 返回记录的状态码
func (w *bufferedResponseWriter) Status() int {
	return w.status
}

// Size 返回缓冲的响应大小
func (w *bufferedResponseWriter) Size() int {
	return w.body.Len()
}

// Written 是否已有输出
func (w *bufferedResponseWriter) Written() bool {
	return w.body.Len() > 0
}

// GzipMiddleware 返回一个Gin中间件，响应体不小于 minSize 字节时使用gzip压缩
func GzipMiddleware(minSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 检查客户端是否支持gzip
		if !strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		original := c.Writer
		buffered := &bufferedResponseWriter{
			ResponseWriter: original,
			body:           &bytes.Buffer{},
			status:         http.StatusOK,
		}
		c.Writer = buffered

		// 处理请求
		c.Next()

		c.Writer = original
		responseData := buffered.body.Bytes()

		// 如果响应大小小于最小压缩大小，直接返回原始内容
		if len(responseData) < minSize || original.Header().Get("Content-Encoding") != "" {
			original.WriteHeader(buffered.status)
			original.Write(responseData)
			return
		}

		compressed, err := CompressData(responseData)
		if err != nil {
			original.WriteHeader(buffered.status)
			original.Write(responseData)
			return
		}

		// 设置gzip响应头
		original.Header().Set("Content-Encoding", "gzip")
		original.Header().Add("Vary", "Accept-Encoding")
		original.Header().Del("Content-Length")
		original.WriteHeader(buffered.status)
		original.Write(compressed)
	}
}

// CompressData 压缩数据
func CompressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	// 创建gzip写入器
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}

	// 写入数据
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}

	// 关闭写入器
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
