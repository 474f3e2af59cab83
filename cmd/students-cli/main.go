// main is the entry point of the student-records console menu.
//
//	go run ./cmd/students-cli --config=config/local.yaml
//
// Logs go to stderr so they do not interleave with the menu on stdout.
package main

import (
	"log/slog"
	"os"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/console"
	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/storage/jsonfile"
)

func main() {
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env, os.Stderr)

	store := jsonfile.New(cfg.StoragePath)

	log.Debug("storage initialised", slog.String("path", store.Path()))

	if err := console.New(store, os.Stdin, os.Stdout).Run(); err != nil {
		log.Error("console stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
