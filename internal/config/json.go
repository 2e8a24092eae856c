package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/facegate/internal/flagx"
	"github.com/dmitrijs2005/facegate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so the file can say "300ms" or give nanoseconds.
// Pointer fields distinguish "absent" from an explicit zero.
type JsonConfig struct {
	DataDir         string          `json:"data_dir"`
	StoreBackend    string          `json:"store_backend"`
	CredentialLog   string          `json:"credential_log"`
	BindingLog      string          `json:"binding_log"`
	SQLitePath      string          `json:"sqlite_path"`
	DatabaseDSN     string          `json:"database_dsn"`
	SerialDevice    string          `json:"serial_device"`
	BaudRate        int             `json:"baud_rate"`
	TransportAddr   string          `json:"transport_addr"`
	FeatureTag      string          `json:"feature_tag"`
	PassLiteral     string          `json:"pass_literal"`
	FailLiteral     string          `json:"fail_literal"`
	PollInterval    *timex.Duration `json:"poll_interval"`
	AcquireTimeout  *timex.Duration `json:"acquire_timeout"`
	DisplayDuration *timex.Duration `json:"display_duration"`
	ButtonAIdentity int             `json:"button_a_identity"`
	ButtonBIdentity int             `json:"button_b_identity"`
	GRPCAddr        string          `json:"grpc_addr"`
	SecretKey       string          `json:"secret_key"`
	TokenValidity   *timex.Duration `json:"token_validity"`
	LogLevel        string          `json:"log_level"`
	LogFormat       string          `json:"log_format"`
	S3Bucket        string          `json:"s3_bucket"`
	S3Region        string          `json:"s3_region"`
	S3BaseEndpoint  string          `json:"s3_base_endpoint"`
	S3User          string          `json:"s3_user"`
	S3Password      string          `json:"s3_password"`
}

// parseJson overlays cfg with the values present in the JSON file named by
// -c or -config. Keys missing from the file keep their current value.
// Panics on read or unmarshal errors.
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

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.StoreBackend, jc.StoreBackend)
	setString(&cfg.CredentialLog, jc.CredentialLog)
	setString(&cfg.BindingLog, jc.BindingLog)
	setString(&cfg.SQLitePath, jc.SQLitePath)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SerialDevice, jc.SerialDevice)
	setString(&cfg.TransportAddr, jc.TransportAddr)
	setString(&cfg.FeatureTag, jc.FeatureTag)
	setString(&cfg.PassLiteral, jc.PassLiteral)
	setString(&cfg.FailLiteral, jc.FailLiteral)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3User, jc.S3User)
	setString(&cfg.S3Password, jc.S3Password)

	if jc.BaudRate != 0 {
		cfg.BaudRate = jc.BaudRate
	}
	if jc.ButtonAIdentity != 0 {
		cfg.ButtonAIdentity = jc.ButtonAIdentity
	}
	if jc.ButtonBIdentity != 0 {
		cfg.ButtonBIdentity = jc.ButtonBIdentity
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.AcquireTimeout != nil {
		cfg.AcquireTimeout = jc.AcquireTimeout.Duration
	}
	if jc.DisplayDuration != nil {
		cfg.DisplayDuration = jc.DisplayDuration.Duration
	}
	if jc.TokenValidity != nil {
		cfg.TokenValidity = jc.TokenValidity.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
