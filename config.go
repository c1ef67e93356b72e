// Package bakalr hosts shared configuration for the bakalr authorization
// engine. The permission catalog (implication edges and the role level
// registry) is static configuration, loaded once at process start and treated
// as immutable thereafter.
package bakalr

import (
	"github.com/bsakweson/bakalr-cms-sub001/internal/config"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Filename of the standard configuration file.
const ConfigFile = "bakalr.yaml"

// KeyInfo contains metadata about a known configuration key. This is
// re-exported from internal/config for public API use.
type KeyInfo = config.KeyInfo

// ValidationWarning flags a loaded configuration key that is not registered,
// with the closest registered keys offered as suggestions.
type ValidationWarning = config.ValidationWarning

// Config is a global koanf instance used to access application level
// configuration options.
//
// Config is loaded in the following order (later sources override earlier):
//  1. Built-in defaults (registered via RegisterKey)
//  2. Auto-discovered bakalr.yaml (in init())
//  3. Environment variables with BK__ prefix (in init())
//  4. Additional sources loaded via LoadConfigFile() or LoadConfigDefaults()
//
// Environment variable transformation:
//   - BK__CATALOG__FILE → catalog.file
//   - BK__LEVELS__DEFAULT_CUSTOM_LEVEL → levels.defaultCustomLevel
var Config = koanf.New(".")

func init() {
	// Look for a bakalr.yaml file in the current directory or any parent.
	if cfg := config.SearchForConfig(ConfigFile, "."); cfg != "" {
		if err := Config.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			panic("error loading config: " + err.Error())
		}
	}

	// Load environment variables with the prefix BK__.
	if err := Config.Load(env.Provider("BK__", ".", config.TransformEnv), nil); err != nil {
		panic("error loading env config: " + err.Error())
	}
}

// RegisterKey registers a known configuration key with metadata.
//
// Example:
//
//	bakalr.RegisterKey(bakalr.KeyInfo{
//	    Key:         "catalog.file",
//	    Description: "Path to the permission catalog definition",
//	    Type:        "string",
//	})
func RegisterKey(info KeyInfo) {
	config.RegisterKey(info)
}

// RegisterKeys registers multiple configuration keys at once.
func RegisterKeys(infos ...KeyInfo) {
	config.RegisterKeys(infos...)
}

// LoadConfigFile loads additional configuration from a YAML file into the
// global Config instance.
func LoadConfigFile(path string) {
	if err := Config.Load(file.Provider(path), yaml.Parser()); err != nil {
		panic("error loading config file '" + path + "': " + err.Error())
	}
}

// LoadConfigDefaults loads default configuration values into the global
// Config instance. Call this before constructing the engine to provide
// application-specific defaults that can be overridden by files or env vars.
func LoadConfigDefaults(defaults map[string]interface{}) {
	if err := Config.Load(confmap.Provider(defaults, "."), nil); err != nil {
		panic("error loading config defaults: " + err.Error())
	}
}

// EnsureConfigDefaults applies registered key defaults for any key that has
// not been set by a file or the environment. Called by engine constructors
// after all init() functions have run.
func EnsureConfigDefaults() {
	config.EnsureDefaultsLoaded(Config)
}

// ValidateConfigKeys checks every loaded configuration key against the
// registry and returns a warning for each unknown one, so typos like
// "catalog.resorces" surface with a "did you mean" suggestion instead of
// being silently ignored.
func ValidateConfigKeys() []ValidationWarning {
	return config.ValidateKeys(Config)
}

// ConfigString returns the string value for the given key.
func ConfigString(key string) string {
	return Config.String(key)
}

// ConfigInt returns the int value for the given key.
func ConfigInt(key string) int {
	return Config.Int(key)
}

// ConfigBool returns the bool value for the given key.
func ConfigBool(key string) bool {
	return Config.Bool(key)
}

// ConfigStrings returns the string slice value for the given key.
func ConfigStrings(key string) []string {
	return Config.Strings(key)
}

// ConfigStringMap returns the string map value for the given key.
func ConfigStringMap(key string) map[string]string {
	return Config.StringMap(key)
}

// ConfigExists checks if the given key exists in the configuration.
func ConfigExists(key string) bool {
	return Config.Exists(key)
}

// ConfigAll returns all configuration as a map.
func ConfigAll() map[string]interface{} {
	return Config.All()
}
