package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/facegate/internal/flagx"
	"github.com/dmitrijs2005/facegate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	SecretKey          string          `json:"secret_key"`
	Operator           string          `json:"operator"`
	TokenValidity      *timex.Duration `json:"token_validity"`
	AccessToken        string          `json:"access_token"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Absent keys keep their current value. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.Operator != "" {
		cfg.Operator = jc.Operator
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.TokenValidity != nil {
		cfg.TokenValidity = jc.TokenValidity.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
