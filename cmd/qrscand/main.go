// Command qrscand serves QR decoding over HTTP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	"github.com/qrsnap/qrsnap/internal/config"
	"github.com/qrsnap/qrsnap/internal/server"
	"github.com/qrsnap/qrsnap/scan"
)

func main() {
	configPath := getopt.StringLong("config", 'c', "", "configuration file (default "+config.FileName+" if present)", "path")
	listen := getopt.StringLong("listen", 'l', "", "listen address, overriding the configuration", "addr")
	help := getopt.BoolLong("help", 'h', "show this help")
	getopt.Parse()
	if *help {
		getopt.Usage()
		return
	}

	fs := afero.NewOsFs()
	cfg, err := loadConfig(fs, *configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, newBackend(cfg, log.Default()), log.Default())
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatalln(err)
	}
}

// loadConfig reads path, or config.FileName when path is empty and the file
// exists.
func loadConfig(fs afero.Fs, path string) (config.Config, error) {
	if path == "" {
		if ok, _ := afero.Exists(fs, config.FileName); ok {
			path = config.FileName
		}
	}
	return config.Load(fs, path)
}

func newBackend(cfg config.Config, logger *log.Logger) scan.Backend {
	engine := scan.NewEngineBackend(cfg.Options())
	if !cfg.PlatformFirst {
		return engine
	}
	return &scan.Chain{
		Primary:  &scan.PlatformBackend{MaxPixels: cfg.MaxPixels},
		Fallback: engine,
		Logger:   logger,
	}
}
