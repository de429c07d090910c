package main

import (
	"fmt"
	"net"
	"os"

	"github.com/Brownie44l1/dataset-api/internal/dataset"
	"github.com/Brownie44l1/dataset-api/internal/handlers"
	"github.com/Brownie44l1/dataset-api/internal/storage"
	"github.com/rogpeppe/rjson"
)

type modelConfig struct {
	Path     string `json:"path"`
	Metadata string `json:"metadata"`
}

type config struct {
	Listen     string              `json:"listen"`
	DatasetDir string              `json:"dataset_dir"`
	Manifest   string              `json:"manifest"`
	Debug      bool                `json:"debug"`
	Gops       bool                `json:"gops"`
	Minio      storage.MinioConfig `json:"minio"`
	Model      modelConfig         `json:"model"`
	CORS       handlers.CORSConfig `json:"cors"`
}

func defaultConfig() *config {
	return &config{
		Listen:     ":8000",
		DatasetDir: "dataset",
		Manifest:   dataset.DefaultManifest,
	}
}

// loadConfig reads an rjson file over the defaults. An empty pathname yields
// the defaults.
func loadConfig(pathname string) (*config, error) {
	c := defaultConfig()
	if pathname == "" {
		return c, nil
	}
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := rjson.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", pathname, err)
	}
	return c, nil
}

// applyEnv lets $PORT replace the port of the listen address.
func (c *config) applyEnv(getenv func(string) string) error {
	port := getenv("PORT")
	if port == "" {
		return nil
	}
	host, _, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	c.Listen = net.JoinHostPort(host, port)
	return nil
}

func (c *config) validate() error {
	if c.Minio.Endpoint != "" && c.Minio.Bucket == "" {
		return fmt.Errorf("minio endpoint %q configured without a bucket", c.Minio.Endpoint)
	}
	if c.Model.Path != "" && c.Model.Metadata == "" {
		return fmt.Errorf("model %q configured without metadata", c.Model.Path)
	}
	if c.Manifest == "" {
		return fmt.Errorf("empty manifest name")
	}
	return nil
}

func (c *config) store() (storage.Store, string, error) {
	if c.Minio.Endpoint != "" {
		s, err := storage.DialMinio(c.Minio)
		if err != nil {
			return nil, "", err
		}
		return s, fmt.Sprintf("minio://%s/%s/%s", c.Minio.Endpoint, c.Minio.Bucket, c.Minio.Prefix), nil
	}
	return storage.NewLocalStore(c.DatasetDir), c.DatasetDir, nil
}
