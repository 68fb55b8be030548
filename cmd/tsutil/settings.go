package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eak1mov/go-tileset/ts"
	"github.com/eak1mov/go-tileset/ts/spec"
	"gopkg.in/yaml.v3"
)

// settings are read from the file given by -config. Command line flags
// override them.
//
//	cache: build/tilesets.db
//	compression: zstd
//	level: 3
//	concurrency: 4
//	log:
//	  path: build/tsutil.log
//	  max_size_mb: 10
//	  max_backups: 3
type settings struct {
	Cache       string      `yaml:"cache"`
	Compression string      `yaml:"compression"`
	Level       int         `yaml:"level"`
	Concurrency int         `yaml:"concurrency"`
	Log         logSettings `yaml:"log"`
}

type logSettings struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func defaultSettings() *settings {
	return &settings{
		Compression: spec.CompressionDeflate.String(),
		Level:       1,
		Log:         logSettings{MaxSizeMB: 10, MaxBackups: 3},
	}
}

func loadSettings(filePath string) (*settings, error) {
	s := defaultSettings()
	if filePath == "" {
		return s, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return s, nil
}

// saveOptions returns the tileset options selected by the settings.
func (s *settings) saveOptions() ([]ts.Option, error) {
	compression, err := spec.ParseCompression(s.Compression)
	if err != nil {
		return nil, err
	}
	return []ts.Option{ts.WithCompressionMethod(compression, s.Level)}, nil
}
