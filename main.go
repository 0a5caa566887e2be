package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/scipunch/linkfeed/cache"
	"github.com/scipunch/linkfeed/config"
)

func main() {
	logger, err := newLogger(os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("failed to create logger with %s", err)
	}
	defer logger.Sync() //nolint:errcheck
	slog.SetDefault(slog.New(newSlogHandler(logger)))

	if err := app().Run(os.Args); err != nil {
		slog.Error("linkfeed failed", "error", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "linkfeed",
		Usage: "Write RSS and Atom link blog feeds for a static site",
		Description: `linkfeed reads the articles of a site, keeps the published ones and
		writes them as link blog feeds. Entries that point at another page link
		there directly and carry a permalink back to the site.

		Flags can generally be set via environment variables, e.g.:

		--config => LINKFEED_CONFIG=site.toml
		`,
		Commands: []*cli.Command{
			buildCmd(),
			initCmd(),
			cleanCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to a TOML config",
		EnvVars: []string{"LINKFEED_CONFIG"},
		Value:   config.DefaultPath(),
	}
}

// readConfig reads the config at path. A missing config at the default path
// is created with defaults.
func readConfig(path string) (config.Config, error) {
	conf, err := config.Read(path)
	if errors.Is(err, os.ErrNotExist) && path == config.DefaultPath() {
		conf = config.Starter()
		if err := config.Write(path, conf); err != nil {
			return conf, fmt.Errorf("failed to write default config with %w", err)
		}
		return conf, nil
	}
	if err != nil {
		return conf, fmt.Errorf("failed to read config with %w", err)
	}
	return conf, nil
}

func openCache(conf config.Config) (*cache.Cache, error) {
	dbPath := conf.DatabasePath
	if dbPath == "" {
		dbPath = cache.DefaultCachePath()
	}
	c, err := cache.NewCache(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at '%s' with %w", dbPath, err)
	}
	return c, nil
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a starter config with both link feeds enabled",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite an existing config",
			},
		},
		Action: func(ctx *cli.Context) error {
			path := ctx.String("config")
			if _, err := os.Stat(path); err == nil && !ctx.Bool("force") {
				return fmt.Errorf("config '%s' already exists", path)
			}
			if err := config.Write(path, config.Starter()); err != nil {
				return fmt.Errorf("failed to write config with %w", err)
			}
			return nil
		},
	}
}

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Forget the digests of previously written feeds",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx *cli.Context) error {
			conf, err := readConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			c, err := openCache(conf)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Clear(); err != nil {
				return err
			}
			slog.Info("cache cleared successfully")
			return nil
		},
	}
}
