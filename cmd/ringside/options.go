package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/alanjwade/tournament-manager-sub000/internal/api"
	"github.com/alanjwade/tournament-manager-sub000/internal/database"
	"github.com/alanjwade/tournament-manager-sub000/internal/tournament"
)

const (
	envOptions = "RINGSIDE_OPTIONS"
	envDB      = "RINGSIDE_DB"
)

type Options struct {
	Addr   string             `toml:"addr"`
	Debug  bool               `toml:"debug"`
	DB     database.Options   `toml:"db"`
	Keeper tournament.Options `toml:"keeper"`
	API    api.Options        `toml:"api"`
}

func (o *Options) FillDefaults() {
	if o.Addr == "" {
		o.Addr = "127.0.0.1:8420"
	}
	o.DB.FillDefaults()
	o.Keeper.FillDefaults()
	o.API.FillDefaults()
}

// loadOptions reads the options file, if any. A .env file in the working directory may
// name the options file and override the database path.
func loadOptions(path string) (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv(envOptions)
	}
	var opts Options
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read options: %w", err)
		}
		if err := toml.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	if db := os.Getenv(envDB); db != "" {
		opts.DB.Path = db
	}
	opts.FillDefaults()
	return &opts, nil
}
