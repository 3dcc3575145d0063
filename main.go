// @title Code Practice 后端 API
// @version 1.0
// @description 刷题练习平台的后端服务器：题库、远程评测、进度与成就。

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"code_practice_backend/internal/app"
	"code_practice_backend/internal/config"
	"flag"
	"log"
)

func main() {
	configPath := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	application.Run()
}
