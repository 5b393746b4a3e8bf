package main

import (
	"net/http"

	"github.com/ZilDuck/crafted-market/internal/config"
	"github.com/ZilDuck/crafted-market/internal/config/di"
	"go.uber.org/zap"
)

func main() {
	config.Init()

	if config.Get().Pinata.Jwt == "" {
		zap.L().Fatal("PINATA_JWT is required to issue upload keys")
	}

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	router := container.GetKeyServer().Router()

	zap.L().Info("Serving upload keys on :" + config.Get().KeyServer.Port)

	if err := http.ListenAndServe(":"+config.Get().KeyServer.Port, router); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start key server")
	}
}
