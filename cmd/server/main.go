package main

import (
	"context"
	"log"

	"github.com/carechain/carechain/internal/server"
	"github.com/carechain/carechain/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
