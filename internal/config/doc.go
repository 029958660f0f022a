// SPDX-License-Identifier: MPL-2.0

// Package config handles extctl configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/extctl/config.cue (or $XDG_CONFIG_HOME/extctl
// on Linux, ~/Library/Application Support/extctl/config.cue on macOS, %APPDATA%\extctl\config.cue
// on Windows). The engine section maps onto extension.Settings, the load section onto
// extension.LoadFlags, and the ui section controls logging verbosity, colors and the
// default report format.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
