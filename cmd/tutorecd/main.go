// tutorecd runs the recording daemon in the foreground without the CLI
// wrapper, for service managers that want a dedicated binary.
package main

import (
	"context"
	"log"

	"tutorec/internal/config"
	"tutorec/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: cfg.Logging.Level}); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
