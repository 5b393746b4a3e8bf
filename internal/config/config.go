package config

import (
	"github.com/ZilDuck/crafted-market/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"math/big"
	"strconv"
	"strings"
)

type Config struct {
	Env       string
	Debug     bool
	LogPath   string
	SentryDsn string
	Account   string

	Ledger        LedgerConfig
	Market        MarketConfig
	Pinata        PinataConfig
	Metadata      MetadataConfig
	KeyServer     KeyServerConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type LedgerConfig struct {
	Url          string
	Contract     string
	Timeout      int
	Debug        bool
	PollInterval int
	Retries      int
}

type MarketConfig struct {
	DefaultFeePercent int
	FeeFallback       bool
}

type PinataConfig struct {
	ApiUrl      string
	Jwt         string
	KeyMaxUses  int
	Gateway     string
	KeyEndpoint string
	ExternalUrl string
	Timeout     int
}

type MetadataConfig struct {
	Cache     string
	CacheFile string
	Index     string
}

type KeyServerConfig struct {
	Port string
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Token     string
	Region    string
}

type ElasticSearchConfig struct {
	Hosts       []string
	Sniff       bool
	HealthCheck bool
	Debug       bool
	Username    string
	Password    string
	Aws         bool
}

func Init() {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Debug("No .env file loaded")
	}

	viper.AutomaticEnv()
	if file := getString("CONFIG_FILE", ""); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			zap.L().With(zap.Error(err), zap.String("file", file)).Fatal("Unable to read config file")
		}
	}

	initLogger()
}

func initLogger() {
	log.NewLogger(Get().LogPath, Get().Debug, Get().SentryDsn)
}

func Get() *Config {
	return &Config{
		Env:       getString("ENV", ""),
		Debug:     getBool("DEBUG", false),
		LogPath:   getString("LOG_PATH", "./var/market.log"),
		SentryDsn: getString("SENTRY_DSN", ""),
		Account:   getString("ACCOUNT", ""),
		Ledger: LedgerConfig{
			Url:          getString("LEDGER_URL", "http://127.0.0.1:8545"),
			Contract:     getString("LEDGER_CONTRACT", ""),
			Timeout:      getInt("LEDGER_TIMEOUT", 30),
			Debug:        getBool("LEDGER_DEBUG", false),
			PollInterval: getInt("LEDGER_POLL_INTERVAL_MS", 2000),
			Retries:      getInt("LEDGER_RETRIES", 3),
		},
		Market: MarketConfig{
			DefaultFeePercent: getInt("MARKET_DEFAULT_FEE_PERCENT", 2),
			FeeFallback:       getBool("MARKET_FEE_FALLBACK", true),
		},
		Pinata: PinataConfig{
			ApiUrl:      getString("PINATA_API_URL", "https://api.pinata.cloud"),
			Jwt:         getString("PINATA_JWT", ""),
			KeyMaxUses:  getInt("PINATA_KEY_MAX_USES", 2),
			Gateway:     getString("GATEWAY_URL", "gateway.pinata.cloud"),
			KeyEndpoint: getString("UPLOAD_KEY_ENDPOINT", "http://127.0.0.1:8080/api/key"),
			ExternalUrl: getString("EXTERNAL_URL", "https://crafted.ketto.space"),
			Timeout:     getInt("PINATA_TIMEOUT", 60),
		},
		Metadata: MetadataConfig{
			Cache:     getString("METADATA_CACHE", "memory"),
			CacheFile: getString("METADATA_CACHE_FILE", ""),
			Index:     getString("METADATA_INDEX", "crafted.metadata"),
		},
		KeyServer: KeyServerConfig{
			Port: getString("KEY_SERVER_PORT", "8080"),
		},
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Token:     getString("AWS_SESSION_TOKEN", ""),
			Region:    getString("AWS_REGION", ""),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:       getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:       getBool("ELASTIC_SEARCH_SNIFF", false),
			HealthCheck: getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:       getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:    getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:    getString("ELASTIC_SEARCH_PASSWORD", ""),
			Aws:         getBool("ELASTIC_SEARCH_AWS", false),
		},
	}
}

func getString(key string, defaultValue string) string {
	_ = viper.BindEnv(key)
	if viper.IsSet(key) {
		return viper.GetString(key)
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
