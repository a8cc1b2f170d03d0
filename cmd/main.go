package main

import (
	"fmt"
	"os"

	"github.com/ar3/our-gruuv-sub014/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("Starting server", "addr", a.Cfg.HTTPAddr)
	if err := a.Run(a.Cfg.HTTPAddr); err != nil {
		a.Log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
