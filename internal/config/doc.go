// Package config provides configuration management for zdb.
//
// Settings live in a YAML file. The first file found wins:
//   - the path given with --config
//   - zdb.yaml in the working directory
//   - the per-user file returned by GetConfigPath
//
// A missing file is not an error: Default values are used. Command-line
// flags are applied on top of whatever was loaded, then Validate is called
// before anything connects.
//
// # Configuration File Location
//
// The per-user file follows OS conventions:
//   - Linux: $XDG_CONFIG_HOME/zdb/config.yaml or $HOME/.config/zdb/config.yaml
//   - macOS: $HOME/.config/zdb/config.yaml
//   - Windows: %LOCALAPPDATA%\zdb\config.yaml
//
// # Usage Example
//
//	cfg, path, err := config.Load(flagPath)
//	if err != nil {
//	    return err
//	}
//	cfg.Host = "192.168.1.20"
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
