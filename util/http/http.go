package http

import (
	"context"
	"time"
)

type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam 一次请求的参数
//
// Body 可以是 nil、[]byte、io.Reader，其它类型按 JSON 编码。
// Response 为 *[]byte 时写入原始响应体，为 nil 时丢弃，其它按 JSON 解码。
type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	Body       interface{}
	Response   interface{}

	Timeout time.Duration
	// MaxBodySize 响应体上限（字节），0 表示使用默认值
	MaxBodySize int64
}
