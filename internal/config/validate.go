package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateApps(); err != nil {
		return err
	}
	if err := c.validateReaders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.CallTimeout < 0 {
		return errors.New("conversion.call_timeout must be zero or positive")
	}
	if c.Conversion.SlotTimeout < 0 {
		return errors.New("conversion.slot_timeout must be zero or positive")
	}
	if c.Conversion.CrossProcessLock && c.Conversion.LockFile == "" {
		return errors.New("conversion.lock_file must be set when cross_process_lock is enabled")
	}
	return nil
}

func (c *Config) validateApps() error {
	seen := make(map[string]struct{}, len(c.Apps))
	for i, app := range c.Apps {
		if app.Name == "" {
			return fmt.Errorf("apps[%d].name must be set", i)
		}
		if _, ok := seen[app.Name]; ok {
			return fmt.Errorf("apps[%d]: duplicate app name %q", i, app.Name)
		}
		seen[app.Name] = struct{}{}
		if app.Command == "" {
			return fmt.Errorf("apps.%s.command must be set", app.Name)
		}
		if !containsPlaceholder(app.ExportArgs, "{target}") {
			return fmt.Errorf("apps.%s.export_args must reference {target}", app.Name)
		}
		if len(app.Formats) == 0 {
			return fmt.Errorf("apps.%s.formats must list at least one intermediate format", app.Name)
		}
	}
	return nil
}

func (c *Config) validateReaders() error {
	names := make(map[string]struct{}, len(c.Readers))
	owners := make(map[string]string)
	for i, reader := range c.Readers {
		if reader.Name == "" {
			return fmt.Errorf("readers[%d].name must be set", i)
		}
		if _, ok := names[reader.Name]; ok {
			return fmt.Errorf("readers[%d]: duplicate reader name %q", i, reader.Name)
		}
		names[reader.Name] = struct{}{}
		if len(reader.Extensions) == 0 {
			return fmt.Errorf("readers.%s.extensions must not be empty", reader.Name)
		}
		for _, ext := range reader.Extensions {
			if owner, ok := owners[ext]; ok {
				return fmt.Errorf("readers.%s: extension %q already claimed by reader %q", reader.Name, ext, owner)
			}
			owners[ext] = reader.Name
		}
		if len(reader.Apps) == 0 {
			return fmt.Errorf("readers.%s.apps must not be empty", reader.Name)
		}
		for _, name := range reader.Apps {
			if _, ok := c.App(name); !ok {
				return fmt.Errorf("readers.%s: unknown app %q", reader.Name, name)
			}
		}
	}
	return nil
}

func containsPlaceholder(args []string, placeholder string) bool {
	for _, arg := range args {
		if strings.Contains(arg, placeholder) {
			return true
		}
	}
	return false
}
