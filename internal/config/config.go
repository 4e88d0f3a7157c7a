package config

type Config interface {
	EnvConfig
	ProximityConfig
	SessionConfig
	BrowserConfig
	DeviceConfig
}

type mainConfig struct {
	EnvVars
	Proximity
	Session
	Browser
	Device
}

func New() Config {
	return mainConfig{}
}
