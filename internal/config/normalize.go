package config

import (
	"fmt"
	"os"
	"strings"

	"modelbridge/internal/formats"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeConversion(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeHost()
	c.normalizeApps()
	c.normalizeReaders()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		if value, ok := os.LookupEnv("MODELBRIDGE_SCRATCH_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.ScratchDir = strings.TrimSpace(value)
		} else {
			c.Paths.ScratchDir = os.TempDir()
		}
	}
	if c.Paths.ScratchDir, err = ExpandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() error {
	var err error
	if strings.TrimSpace(c.Conversion.LockFile) == "" {
		c.Conversion.LockFile = defaultLockFile
	}
	if c.Conversion.LockFile, err = ExpandPath(strings.TrimSpace(c.Conversion.LockFile)); err != nil {
		return fmt.Errorf("conversion.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHost() {
	c.Host.DisabledReaders = formats.NormalizeAll(c.Host.DisabledReaders)
}

func (c *Config) normalizeApps() {
	if len(c.Apps) == 0 {
		c.Apps = defaultApps()
	}
	for i := range c.Apps {
		app := &c.Apps[i]
		app.Name = strings.ToLower(strings.TrimSpace(app.Name))
		app.Command = strings.TrimSpace(app.Command)
		app.SourceFormats = formats.NormalizeAll(app.SourceFormats)
		if len(app.Formats) > 0 {
			tokens := make(map[string]string, len(app.Formats))
			for format, token := range app.Formats {
				key := formats.Normalize(format)
				if key == "" {
					continue
				}
				token = strings.TrimSpace(token)
				if token == "" {
					token = key
				}
				tokens[key] = token
			}
			app.Formats = tokens
		}
	}
}

func (c *Config) normalizeReaders() {
	if len(c.Readers) == 0 {
		c.Readers = defaultReaders()
	}
	for i := range c.Readers {
		reader := &c.Readers[i]
		reader.Name = strings.ToLower(strings.TrimSpace(reader.Name))
		reader.Extensions = formats.NormalizeAll(reader.Extensions)
		reader.PreferredFormats = formats.NormalizeAll(reader.PreferredFormats)
		apps := make([]string, 0, len(reader.Apps))
		for _, name := range reader.Apps {
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
				apps = append(apps, name)
			}
		}
		reader.Apps = apps
	}
}
