// Package config assembles the server settings. Sources are applied in
// increasing priority: built-in defaults, an optional JSON file, the
// environment (including a .env file) and command line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/patric-chuzhbe/apidemo/internal/models"
)

// Config holds the validated server settings.
type Config struct {
	RunAddr           string        `env:"SERVER_ADDRESS" validate:"listenaddr"`
	LogLevel          string        `env:"LOG_LEVEL" validate:"loglevel"`
	ProductIDPolicy   string        `env:"PRODUCT_ID_POLICY" validate:"idpolicy"`
	ValidateRequests  bool          `env:"VALIDATE_REQUESTS"`
	ValidateResponses bool          `env:"VALIDATE_RESPONSES"`
	GRPCAddr          string        `env:"GRPC_ADDRESS" validate:"omitempty,listenaddr"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	SeedFile          string        `env:"SEED_FILE" validate:"omitempty,filepath"`
	ConfigFile        string        `env:"CONFIG"`
}

var defaultConfig = Config{
	RunAddr:           ":3000",
	LogLevel:          "info",
	ProductIDPolicy:   string(models.ProductIDPolicyLength),
	ValidateRequests:  true,
	ValidateResponses: true,
	GRPCAddr:          "",
	ShutdownTimeout:   10 * time.Second,
}

// fileConfig mirrors Config for the JSON file. Absent keys stay nil and
// leave the current value alone.
type fileConfig struct {
	RunAddr           *string `json:"server_address"`
	LogLevel          *string `json:"log_level"`
	ProductIDPolicy   *string `json:"product_id_policy"`
	ValidateRequests  *bool   `json:"validate_requests"`
	ValidateResponses *bool   `json:"validate_responses"`
	GRPCAddr          *string `json:"grpc_address"`
	ShutdownTimeout   *string `json:"shutdown_timeout"`
	SeedFile          *string `json:"seed_file"`
}

func applyDefaults(values *Config, defaults Config) {
	configFile := values.ConfigFile
	*values = defaults
	values.ConfigFile = configFile
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fromFile fileConfig
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fromFile.RunAddr != nil {
		c.RunAddr = *fromFile.RunAddr
	}
	if fromFile.LogLevel != nil {
		c.LogLevel = *fromFile.LogLevel
	}
	if fromFile.ProductIDPolicy != nil {
		c.ProductIDPolicy = *fromFile.ProductIDPolicy
	}
	if fromFile.ValidateRequests != nil {
		c.ValidateRequests = *fromFile.ValidateRequests
	}
	if fromFile.ValidateResponses != nil {
		c.ValidateResponses = *fromFile.ValidateResponses
	}
	if fromFile.GRPCAddr != nil {
		c.GRPCAddr = *fromFile.GRPCAddr
	}
	if fromFile.SeedFile != nil {
		c.SeedFile = *fromFile.SeedFile
	}
	if fromFile.ShutdownTimeout != nil {
		timeout, err := time.ParseDuration(*fromFile.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		c.ShutdownTimeout = timeout
	}

	return nil
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":  true,
		"info":   true,
		"warn":   true,
		"error":  true,
		"dpanic": true,
		"panic":  true,
		"fatal":  true,
	}

	return allowedLogLevels[value]
}

var hostValidator = validator.New()

// validateListenAddr accepts host:port where host may be empty and port 0
// asks the system for a free port.
func validateListenAddr(fieldLevel validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fieldLevel.Field().String())
	if err != nil {
		return false
	}

	portNumber, err := strconv.Atoi(port)
	if err != nil || portNumber < 0 || portNumber > 65535 {
		return false
	}

	return host == "" || hostValidator.Var(host, "hostname_rfc1123|ip") == nil
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil
}

func validateIDPolicy(fieldLevel validator.FieldLevel) bool {
	switch models.ProductIDPolicy(fieldLevel.Field().String()) {
	case models.ProductIDPolicyLength, models.ProductIDPolicySequence:
		return true
	}
	return false
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("idpolicy", validateIDPolicy)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("listenaddr", validateListenAddr)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
	envFiles            []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// WithEnvFiles loads the given dotenv files instead of .env.
func WithEnvFiles(files ...string) InitOption {
	return func(options *initOptions) {
		options.envFiles = files
	}
}

func (c *Config) flagSet() *flag.FlagSet {
	flags := flag.NewFlagSet("apidemo", flag.ContinueOnError)
	flags.StringVar(&c.RunAddr, "a", c.RunAddr, "address and port to run server")
	flags.StringVar(&c.LogLevel, "l", c.LogLevel, "logger level")
	flags.StringVar(&c.ProductIDPolicy, "p", c.ProductIDPolicy, "product id policy: length or sequence")
	flags.StringVar(&c.GRPCAddr, "g", c.GRPCAddr, "address of the gRPC health server, empty to disable it")
	flags.DurationVar(&c.ShutdownTimeout, "t", c.ShutdownTimeout, "graceful shutdown timeout")
	flags.StringVar(&c.SeedFile, "s", c.SeedFile, "JSON or YAML file with the initial users and products")
	flags.StringVar(&c.ConfigFile, "c", c.ConfigFile, "JSON configuration file")
	return flags
}

// configFileFromArgs finds -c before the other flags are applied, so the
// file can sit below the environment and the flags.
func configFileFromArgs(args []string, current string) string {
	probe := flag.NewFlagSet("probe", flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	configFile := probe.String("c", current, "")
	probe.Bool("h", false, "")
	for _, name := range []string{"a", "l", "p", "g", "t", "s"} {
		probe.String(name, "", "")
	}
	if err := probe.Parse(args); err != nil {
		return current
	}
	return *configFile
}

// New builds a Config from every source and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load(options.envFiles...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	values.ConfigFile = os.Getenv("CONFIG")
	if !options.disableFlagsParsing {
		values.ConfigFile = configFileFromArgs(options.args, values.ConfigFile)
	}
	if values.ConfigFile != "" {
		if err := values.applyFile(values.ConfigFile); err != nil {
			return nil, err
		}
	}

	err = env.Parse(values)
	if err != nil {
		return nil, err
	}

	if !options.disableFlagsParsing {
		if err := values.flagSet().Parse(options.args); err != nil {
			return nil, err
		}
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
