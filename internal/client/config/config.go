package config

import "time"

// Config holds runtime settings for facegatectl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the controller's control API.
//   - SecretKey: HS256 secret shared with the controller, used to mint tokens.
//   - Operator: name recorded in minted tokens.
//   - TokenValidity: lifetime of minted tokens.
//   - AccessToken: pre-issued token; when empty one is minted from SecretKey.
//   - RequestTimeout: bound on a single call, which includes the wait for
//     the operator to face the camera.
//   - Args: the command and its operands.
type Config struct {
	ServerEndpointAddr string
	SecretKey          string
	Operator           string
	TokenValidity      time.Duration
	AccessToken        string
	RequestTimeout     time.Duration
	Args               []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SecretKey = "secretKey"
	c.Operator = "operator"
	c.TokenValidity = 10 * time.Minute
	c.RequestTimeout = time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
