package constants

// DefaultEnvPath is the default path to the .env file
const DefaultEnvPath = "./.env"

// DefaultConfigPath is the default path to the config.toml file
const DefaultConfigPath = "./config.toml"

// EnvConfigPath names the environment variable that overrides DefaultConfigPath.
const EnvConfigPath = "CRONALARM_CONFIG"
