package main

import (
	"log"

	"github.com/mgaillard/cooloff/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ cooloff failed to start: %v", err)
	}
}
