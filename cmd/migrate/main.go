package main

import (
	"fmt"
	"os"

	"github.com/ipede/auth-hub/internal/infrastructure/config"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(cfg); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations completed")
}
