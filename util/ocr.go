package util

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"panbot/util/json"
)

// OCRClient 验证码识别服务客户端
type OCRClient struct {
	endpoint string
	client   *http.Client
}

type ocrRequest struct {
	ImageURL string `json:"image_url"`
}

type ocrResponse struct {
	Result string `json:"result"`
}

// NewOCRClient 创建验证码识别客户端
func NewOCRClient(endpoint string, client *http.Client) *OCRClient {
	return &OCRClient{endpoint: endpoint, client: client}
}

// Recognize 识别指定图片地址中的验证码文本
func (c *OCRClient) Recognize(ctx context.Context, imageURL string) (string, error) {
	payload, err := json.Marshal(ocrRequest{ImageURL: imageURL})
	if err != nil {
		return "", fmt.Errorf("marshal ocr request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create ocr request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	body, err := ReadBody(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned status %d", resp.StatusCode)
	}

	var out ocrResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ocr response failed: %w", err)
	}
	return strings.TrimSpace(out.Result), nil
}
