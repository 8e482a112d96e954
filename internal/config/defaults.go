package config

const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":9992"
	defaultAPIURL           = "https://api.hyperliquid.xyz"
	defaultTimeoutSeconds   = 15
	defaultExpectedExchange = "hyperliquid"
	defaultInstrumentSuffix = "-PERP"
	defaultLeverage         = 1
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.Hyperliquid.APIURL == "" {
		c.Hyperliquid.APIURL = defaultAPIURL
	}
	if c.Hyperliquid.TimeoutSeconds <= 0 {
		c.Hyperliquid.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Trading.ExpectedExchange == "" {
		c.Trading.ExpectedExchange = defaultExpectedExchange
	}
	if c.Trading.InstrumentSuffix == "" {
		c.Trading.InstrumentSuffix = defaultInstrumentSuffix
	}
	if c.Trading.DefaultLeverage <= 0 {
		c.Trading.DefaultLeverage = defaultLeverage
	}
}
