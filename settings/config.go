package settings

import (
	"context"
	"encoding/json"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/tantralabs/sena/agents"
	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/utils"
)

// Config is everything needed to build and run a fleet.
type Config struct {
	Symbol     string          `json:"symbol" validate:"required"`
	Seed       int64           `json:"seed"` // 0 seeds from the clock
	LogLevel   string          `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat  string          `json:"log_format" validate:"omitempty,oneof=console json"`
	SecretName string          `json:"secret_name"` // AWS Secrets Manager secret holding env vars
	Region     string          `json:"region"`
	RateLimit  RateLimitConfig `json:"rate_limit"`
	Simulator  SimulatorConfig `json:"simulator"`
	Database   DatabaseConfig  `json:"database"`
	Influx     InfluxConfig    `json:"influx"`
	Agents     AgentsConfig    `json:"agents"`
}

type RateLimitConfig struct {
	MaxRequests int             `json:"max_requests" validate:"gte=1"`
	Window      models.Duration `json:"window"`
}

type SimulatorConfig struct {
	StartPrice float64         `json:"start_price" validate:"gt=0"`
	Volatility float64         `json:"volatility" validate:"gte=0,lt=1"` // per tick standard deviation of returns
	HalfSpread float64         `json:"half_spread" validate:"gte=0,lt=1"`
	BaseVolume float64         `json:"base_volume" validate:"gte=0"`
	Step       models.Duration `json:"step"`
	Fill       string          `json:"fill" validate:"omitempty,oneof=open close mean_oc mean_hl"` // candle price used when replaying
}

type DatabaseConfig struct {
	Host     string          `json:"host"`
	Port     int             `json:"port" validate:"omitempty,gt=0,lte=65535"`
	User     string          `json:"user"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	SSLMode  string          `json:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	Timeout  models.Duration `json:"timeout"`
}

type InfluxConfig struct {
	URL         string          `json:"url" validate:"omitempty,url"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	Database    string          `json:"database"`
	Measurement string          `json:"measurement"`
	Timeout     models.Duration `json:"timeout"`
}

// AgentsConfig holds the parameters of every agent in the fleet.
type AgentsConfig struct {
	Grid         agents.GridConfig         `json:"grid"`
	DCA          agents.DCAConfig          `json:"dca"`
	Arbitrage    agents.ArbitrageConfig    `json:"arbitrage"`
	Scalping     agents.ScalpingConfig     `json:"scalping"`
	MarketMaking agents.MarketMakingConfig `json:"market_making"`
	Momentum     agents.MomentumConfig     `json:"momentum_ai"`
	MEV          agents.MEVConfig          `json:"mev"`
	AMM          agents.AMMConfig          `json:"amm"`
	Liquidity    agents.LiquidityConfig    `json:"liquidity"`
	DeFi         agents.DeFiConfig         `json:"defi"`
	Bridge       agents.BridgeConfig       `json:"bridge"`
	Lending      agents.LendingConfig      `json:"lending"`
	GasOptimizer agents.GasOptimizerConfig `json:"gas_optimizer"`
	Mining       agents.MiningConfig       `json:"mining"`
}

func Default() Config {
	return Config{
		Symbol:    "BTC/USDT",
		LogLevel:  "info",
		LogFormat: "console",
		Region:    "us-west-1",
		RateLimit: RateLimitConfig{
			MaxRequests: 10,
			Window:      models.NewDuration(time.Minute),
		},
		Simulator: SimulatorConfig{
			StartPrice: 50000,
			Volatility: 0.005,
			HalfSpread: 0.001,
			BaseVolume: 1000000,
			Step:       models.NewDuration(time.Hour),
			Fill:       "close",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "sena",
			Name:    "sena",
			SSLMode: "disable",
			Timeout: models.NewDuration(10 * time.Second),
		},
		Influx: InfluxConfig{
			Database:    "sena",
			Measurement: "agent_metrics",
			Timeout:     models.NewDuration(5 * time.Second),
		},
		Agents: AgentsConfig{
			Grid:         agents.DefaultGridConfig(),
			DCA:          agents.DefaultDCAConfig(),
			Arbitrage:    agents.DefaultArbitrageConfig(),
			Scalping:     agents.DefaultScalpingConfig(),
			MarketMaking: agents.DefaultMarketMakingConfig(),
			Momentum:     agents.DefaultMomentumConfig(),
			MEV:          agents.DefaultMEVConfig(),
			AMM:          agents.DefaultAMMConfig(),
			Liquidity:    agents.DefaultLiquidityConfig(),
			DeFi:         agents.DefaultDeFiConfig(),
			Bridge:       agents.DefaultBridgeConfig(),
			Lending:      agents.DefaultLendingConfig(),
			GasOptimizer: agents.DefaultGasOptimizerConfig(),
			Mining:       agents.DefaultMiningConfig(),
		},
	}
}

// LoadConfig reads a json config file over the defaults.
func LoadConfig(fileName string) (Config, error) {
	config := Default()
	file, err := os.ReadFile(fileName)
	if err != nil {
		return config, errors.Wrapf(err, "read config %s", fileName)
	}
	if err := json.Unmarshal(file, &config); err != nil {
		return config, errors.Wrapf(err, "parse config %s", fileName)
	}
	return config, nil
}

// Load builds the runtime config. Sources are applied in order: defaults, the
// json file (if fileName is set), a .env file in the working directory,
// SENA_* environment variables, then environment variables stored in the AWS
// secret named by SecretName. The result is validated.
func Load(ctx context.Context, fileName string) (Config, error) {
	config := Default()
	if fileName != "" {
		var err error
		if config, err = LoadConfig(fileName); err != nil {
			return config, err
		}
	}

	if err := godotenv.Load(); err == nil {
		logger.Debugf("Loaded .env")
	}
	if err := applyEnv(&config); err != nil {
		return config, err
	}

	if config.SecretName != "" {
		if err := utils.LoadENV(ctx, config.SecretName, config.Region); err != nil {
			return config, errors.Wrap(err, "load env from secret")
		}
		if err := applyEnv(&config); err != nil {
			return config, err
		}
	}

	return config, Validate(config)
}

var validate = newValidator()

// newValidator reads models.Duration fields as nanoseconds so numeric tags
// apply to them.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, models.Duration{})
	return v
}

func Validate(config Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// applyEnv overrides config fields from SENA_* variables.
func applyEnv(config *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	var err error
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			var n int
			if n, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
				err = errors.Wrapf(err, "%s", key)
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *models.Duration) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			var d time.Duration
			if d, err = time.ParseDuration(strings.TrimSpace(v)); err != nil {
				err = errors.Wrapf(err, "%s", key)
				return
			}
			dst.Duration = d
		}
	}

	str("DEFAULT_TRADING_PAIR", &config.Symbol)
	str("SENA_SYMBOL", &config.Symbol)
	str("SENA_LOG_LEVEL", &config.LogLevel)
	str("SENA_LOG_FORMAT", &config.LogFormat)
	str("SENA_SECRET_NAME", &config.SecretName)
	str("SENA_AWS_REGION", &config.Region)

	if v, ok := os.LookupEnv("SENA_SEED"); ok {
		seed, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			return errors.Wrap(perr, "SENA_SEED")
		}
		config.Seed = seed
	}

	integer("SENA_RATE_LIMIT_MAX", &config.RateLimit.MaxRequests)
	duration("SENA_RATE_LIMIT_WINDOW", &config.RateLimit.Window)

	str("SENA_DB_HOST", &config.Database.Host)
	integer("SENA_DB_PORT", &config.Database.Port)
	str("SENA_DB_USER", &config.Database.User)
	str("SENA_DB_PASSWORD", &config.Database.Password)
	str("SENA_DB_NAME", &config.Database.Name)
	str("SENA_DB_SSLMODE", &config.Database.SSLMode)

	str("SENA_INFLUX_URL", &config.Influx.URL)
	str("SENA_INFLUX_USER", &config.Influx.Username)
	str("SENA_INFLUX_PASSWORD", &config.Influx.Password)
	str("SENA_INFLUX_DB", &config.Influx.Database)

	if v, ok := os.LookupEnv("SENA_MEV_ETHICS"); ok {
		on, perr := strconv.ParseBool(strings.TrimSpace(v))
		if perr != nil {
			return errors.Wrap(perr, "SENA_MEV_ETHICS")
		}
		config.Agents.MEV.EthicsEnabled = on
	}
	return err
}
