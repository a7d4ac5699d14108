// Package gateway 把无服务器平台的请求信封转换为对 http.Handler 的一次调用
package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Event 请求信封，body 为JSON字符串
type Event struct {
	HTTPMethod            string            `json:"httpMethod"`
	Path                  string            `json:"path"`
	Headers               map[string]string `json:"headers"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
}

// Response 响应信封
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// routes 函数名到路由的映射
var routes = map[string]string{
	"auth":      "/api/v1/auth",
	"online":    "/api/v1/online",
	"messenger": "/api/v1/messenger",
	"tracks":    "/api/v1/tracks",
}

// RouteFor 按函数名查找路由，未知函数名返回空串
func RouteFor(function string) string {
	return routes[strings.ToLower(strings.TrimSpace(function))]
}

// Invoke 执行一次请求
func Invoke(h http.Handler, ev Event) Response {
	return InvokeContext(context.Background(), h, ev)
}

// InvokeContext 执行一次请求，ctx 取消时请求上下文随之取消
func InvokeContext(ctx context.Context, h http.Handler, ev Event) Response {
	req, err := newRequest(ctx, ev)
	if err != nil {
		return Response{
			StatusCode: http.StatusBadRequest,
			Headers: map[string]string{
				"Content-Type":                "application/json",
				"Access-Control-Allow-Origin": "*",
			},
			Body: fmt.Sprintf(`{"error":%q}`, err.Error()),
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.Header()))
	for k, v := range rec.Header() {
		if len(v) > 0 {
			headers[k] = strings.Join(v, ", ")
		}
	}
	return Response{
		StatusCode:      rec.Code,
		Headers:         headers,
		Body:            rec.Body.String(),
		IsBase64Encoded: false,
	}
}

func newRequest(ctx context.Context, ev Event) (*http.Request, error) {
	method := strings.ToUpper(ev.HTTPMethod)
	if method == "" {
		method = http.MethodGet
	}
	path := ev.Path
	if path == "" {
		path = "/"
	}

	body := ev.Body
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 body: %w", err)
		}
		body = string(decoded)
	}

	u := &url.URL{Path: path}
	if len(ev.QueryStringParameters) > 0 {
		q := url.Values{}
		for k, v := range ev.QueryStringParameters {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}
	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "127.0.0.1:0"
	return req, nil
}
