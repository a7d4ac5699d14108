package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"tsound-server/pkg/apperr"
	dbPkg "tsound-server/pkg/db"
	"tsound-server/pkg/response"

	"github.com/gin-gonic/gin"
)

// 各端点的 CORS 预检配置
const (
	authMethods      = "POST, OPTIONS"
	authHeaders      = "Content-Type, X-User-Id"
	onlineMethods    = "GET, POST, OPTIONS"
	onlineHeaders    = "Content-Type, X-Session-Id"
	messengerMethods = "GET, POST, OPTIONS"
	messengerHeaders = "Content-Type, X-User-Id"
	tracksMethods    = "GET, POST, PUT, DELETE, OPTIONS"
	tracksHeaders    = "Content-Type, X-User-Session"
)

// flexibleID 请求体里的ID，客户端可能传字符串也可能传数字
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func (f flexibleID) String() string { return string(f) }

// bindBody 解析JSON请求体，空请求体按 {} 处理
func bindBody(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.BadRequest("Invalid JSON")
	}
	return nil
}

// unavailable 未配置数据库时所有业务请求返回500
func unavailable(c *gin.Context) {
	response.InternalError(c, dbPkg.ErrNotConfigured.Error())
}
