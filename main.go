package main

import (
	"fmt"

	C "github.com/xjrad/miniapp-data-analysis/config"
	H "github.com/xjrad/miniapp-data-analysis/handler"
	MW "github.com/xjrad/miniapp-data-analysis/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := C.Init(); err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("Failed to initialize config and services.")
	}

	r := gin.Default()
	r.Use(MW.RequestLogger())
	r.Use(MW.CustomCors())
	H.InitRoutes(r)

	port := C.GetConfig().Port
	log.WithFields(log.Fields{"port": port}).Info("Starting analysis server")
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("Server exited")
	}
}
