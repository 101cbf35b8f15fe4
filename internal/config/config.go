package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Authority string
	VaultAddr string
	TokenAddr string
	FeeToken  string
	Router    string

	LocalAPY          int
	RemoteAPY         int
	RebalanceInterval time.Duration
	YieldReceiver     string
	DestChainSelector uint64
	DestReceiver      string

	AllowedSourceChains []string
	AllowedSenders      []string

	GasLimit        uint64
	AllowOutOfOrder bool

	PollCron string
	AuditOut string
	PGDSN    string

	SimDepositors []string
	SimDeposit    string
	SimFeeBalance string
	SimAckDelay   time.Duration

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("local-apy", 5)
	v.SetDefault("remote-apy", 0)
	v.SetDefault("rebalance-interval", time.Hour)
	v.SetDefault("gas-limit", uint64(200_000))
	v.SetDefault("allow-out-of-order", true)
	v.SetDefault("poll-cron", "@every 10s")
	v.SetDefault("audit-out", "./data/audit.jsonl")
	v.SetDefault("sim-deposit", "1000")
	v.SetDefault("sim-fee-balance", "1000000")
	v.SetDefault("sim-ack-delay", 5*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Authority:           v.GetString("authority"),
		VaultAddr:           v.GetString("vault-addr"),
		TokenAddr:           v.GetString("token-addr"),
		FeeToken:            v.GetString("fee-token"),
		Router:              v.GetString("router"),
		LocalAPY:            v.GetInt("local-apy"),
		RemoteAPY:           v.GetInt("remote-apy"),
		RebalanceInterval:   v.GetDuration("rebalance-interval"),
		YieldReceiver:       v.GetString("yield-receiver"),
		DestChainSelector:   v.GetUint64("dest-chain-selector"),
		DestReceiver:        v.GetString("dest-receiver"),
		AllowedSourceChains: getStringSlice(v, "allowed-source-chain"),
		AllowedSenders:      getStringSlice(v, "allowed-sender"),
		GasLimit:            v.GetUint64("gas-limit"),
		AllowOutOfOrder:     v.GetBool("allow-out-of-order"),
		PollCron:            v.GetString("poll-cron"),
		AuditOut:            v.GetString("audit-out"),
		PGDSN:               v.GetString("pg-dsn"),
		SimDepositors:       getStringSlice(v, "sim-depositor"),
		SimDeposit:          v.GetString("sim-deposit"),
		SimFeeBalance:       v.GetString("sim-fee-balance"),
		SimAckDelay:         v.GetDuration("sim-ack-delay"),
		LogLevel:            v.GetString("log-level"),
	}

	return cfg, nil
}

// ParseAddress converts a string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseAddresses converts string addresses into common.Address.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		addr, err := ParseAddress(input)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// ParseSelectors converts string chain selectors into uint64.
func ParseSelectors(inputs []string) ([]uint64, error) {
	selectors := make([]uint64, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain selector: %s", input)
		}
		selectors = append(selectors, val)
	}
	return selectors, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
