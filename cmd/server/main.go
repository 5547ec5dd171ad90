package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/taskkeeper/internal/server"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
