package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/dataset-api/internal/dataset"
	"github.com/Brownie44l1/dataset-api/internal/handlers"
	"github.com/Brownie44l1/dataset-api/internal/model"
	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "", "location of configuration file")
	datasetDir := flag.String("dataset", "", "dataset root directory, overriding the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	opts, err := loadConfig(*configFile)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}
	if *datasetDir != "" {
		opts.DatasetDir = *datasetDir
	}
	if err := opts.applyEnv(os.Getenv); err != nil {
		log.WithField("err", err).Fatal("Invalid environment")
	}
	if err := opts.validate(); err != nil {
		log.WithField("err", err).Fatal("Invalid configuration")
	}

	if opts.Debug || *debug {
		log.SetLevel(log.DebugLevel)
	}

	if opts.Gops {
		if err := agent.Listen(agent.Options{
			ShutdownCleanup: true,
		}); err != nil {
			log.WithField("err", err).Warn("Could not start gops agent")
		} else {
			defer agent.Close()
		}
	}

	store, location, err := opts.store()
	if err != nil {
		log.WithField("err", err).Fatal("Could not set up dataset storage")
	}
	log.Infof("Serving dataset from %s", location)

	ds := dataset.New(store,
		dataset.WithManifest(opts.Manifest),
		dataset.WithLogger(log.WithField("component", "dataset")),
	)
	handlerOpts := []handlers.Option{
		handlers.WithLogger(log.WithField("component", "http")),
	}

	if opts.Model.Path != "" {
		log.Infof("Loading model from: %s", opts.Model.Path)
		classifier, err := model.NewClassifier(opts.Model.Path, opts.Model.Metadata)
		if err != nil {
			log.WithField("err", err).Fatal("Failed to initialize classifier")
		}
		defer classifier.Close()
		log.WithField("classes", classifier.Metadata.Classes).Info("Model loaded")
		handlerOpts = append(handlerOpts, handlers.WithClassifier(classifier))
	}

	handler := handlers.NewHandler(ds, handlerOpts...)
	server := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler.Routes(opts.CORS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Server starting on %s", opts.Listen)
	log.Println("Endpoints:")
	log.Println("  GET /                                     - Category list")
	log.Println("  GET /images/{category}                    - Image names of a category")
	log.Println("  GET /image/{category}/{image_name}        - Image bytes (?size=N for a thumbnail)")
	log.Println("  GET /annotations/{category}/{image_name}  - Annotation records")
	log.Println("  GET /classify/{category}/{image_name}     - Model prediction")
	log.Println("  GET /health                               - Health check")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithField("err", err).Fatal("Could not listen and serve")
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithField("err", err).Error("Shutdown failed")
		}
	}
}
