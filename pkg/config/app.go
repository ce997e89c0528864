package config

var AppVersion = "DEVELOPMENT"

const (
	AppName         = "zaparoo-covers"
	LogFile         = "covers.log"
	CfgFile         = "covers.toml"
	AuthFile        = "auth.toml"
	DefaultOutput   = "games-with-covers.json"
	DefaultListen   = ":7498"
	DefaultProvider = "rawg"
)
