// Package environment reads application settings from environment variables.
package environment

//go:generate shimgen --config shims.yaml

// Settings is the configuration read from the environment.
type Settings struct {
	Home  string
	Port  string
	Debug bool
}

// Load reads Settings. APP_PORT defaults to 8080 when unset, but an explicitly empty value is kept.
func Load() Settings {
	port, ok := lookupEnv("APP_PORT")
	if !ok {
		port = defaultPort
	}

	return Settings{
		Home:  getenv("HOME"),
		Port:  port,
		Debug: getenv("APP_DEBUG") == "1",
	}
}

// unexported constants.
const (
	defaultPort = "8080"
)
