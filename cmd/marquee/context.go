package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/model"
)

type commandContext struct {
	configFlag  *string
	envFileFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	modelOnce sync.Once
	model     *model.Model
	modelErr  error
}

func newCommandContext(configFlag, envFileFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		envFileFlag: envFileFlag,
	}
}

// loadEnvFile populates the environment from a dotenv file. Variables that
// are already set keep their values.
func (c *commandContext) loadEnvFile() error {
	if c.envFileFlag == nil {
		return nil
	}
	path := strings.TrimSpace(*c.envFileFlag)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) cliLogger() *slog.Logger {
	cfg, _ := c.ensureConfig()
	logger, err := logging.NewCLI(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) ensureModel() (*model.Model, error) {
	c.modelOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.modelErr = err
			return
		}
		c.model, c.modelErr = model.Load(cfg, c.cliLogger())
		if c.modelErr != nil {
			c.modelErr = fmt.Errorf("%w\nhint: set model.catalog_path and model.matrix_path (data dir %s)", c.modelErr, cfg.Paths.DataDir)
		}
	})
	return c.model, c.modelErr
}

func (c *commandContext) recommendService() (*api.RecommendService, error) {
	m, err := c.ensureModel()
	if err != nil {
		return nil, err
	}
	return api.NewRecommendServiceFromConfig(c.config, m, c.cliLogger())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
