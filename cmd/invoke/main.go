// invoke 从标准输入读取一个请求信封，执行后把响应信封写到标准输出
//
//	echo '{"httpMethod":"GET","path":"/api/v1/online"}' | invoke
//	echo '{"httpMethod":"POST","body":"{}"}' | invoke -function tracks
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"tsound-server/config"
	"tsound-server/internal/app"
	dbPkg "tsound-server/pkg/db"
	"tsound-server/pkg/gateway"
	"tsound-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	function := flag.String("function", "", "auth|online|messenger|tracks，信封未带 path 时据此选择路由")
	timeout := flag.Duration("timeout", 30*time.Second, "单次调用超时")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.InitLogger(cfg.Log)
	defer logger.Sync()
	gin.SetMode(gin.ReleaseMode)

	var ev gateway.Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		fmt.Fprintf(os.Stderr, "读取请求信封失败: %v\n", err)
		os.Exit(1)
	}
	if ev.Path == "" {
		ev.Path = gateway.RouteFor(*function)
	}

	// 数据库不可用时仍然返回信封，由处理器报告 Database not configured
	var gdb *gorm.DB
	if db, err := dbPkg.Open(cfg.Database); err == nil {
		gdb = db
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
	} else if !errors.Is(err, dbPkg.ErrNotConfigured) {
		logger.Error("数据库连接失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp := gateway.InvokeContext(ctx, app.New(cfg, gdb, nil).Router, ev)
	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "写出响应失败: %v\n", err)
		os.Exit(1)
	}
}
