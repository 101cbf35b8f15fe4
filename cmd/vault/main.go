package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"yieldBridge/internal/asset"
	"yieldBridge/internal/config"
	"yieldBridge/internal/storage"
	"yieldBridge/internal/storage/postgres"
	"yieldBridge/internal/transport"
	"yieldBridge/internal/vault"
)

func main() {
	root := &cobra.Command{
		Use:          "vault",
		Short:        "Cross-chain yield vault",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the vault with a simulated remote venue",
		RunE:  runVault,
	}

	runCmd.Flags().String("authority", "", "controlling authority address")
	runCmd.Flags().String("vault-addr", "", "vault's own address")
	runCmd.Flags().String("token-addr", "", "canonical asset address")
	runCmd.Flags().String("fee-token", "", "fee token address")
	runCmd.Flags().String("router", "", "transport router address")
	runCmd.Flags().Int("local-apy", 5, "local APY percentage (0-100)")
	runCmd.Flags().Int("remote-apy", 0, "remote APY percentage (0-100)")
	runCmd.Flags().Duration("rebalance-interval", time.Hour, "minimum time between migrations")
	runCmd.Flags().String("yield-receiver", "", "remote identity credited with migrated yield")
	runCmd.Flags().Uint64("dest-chain-selector", 0, "destination chain selector")
	runCmd.Flags().String("dest-receiver", "", "remote coordinator address")
	runCmd.Flags().StringSlice("allowed-source-chain", nil, "allowlisted source chain selectors (comma-separated)")
	runCmd.Flags().StringSlice("allowed-sender", nil, "allowlisted inbound sender addresses (comma-separated)")
	runCmd.Flags().Uint64("gas-limit", 200_000, "outbound message gas limit hint")
	runCmd.Flags().Bool("allow-out-of-order", true, "outbound out-of-order execution hint")
	runCmd.Flags().String("poll-cron", "@every 10s", "automation poll schedule")
	runCmd.Flags().String("audit-out", "./data/audit.jsonl", "audit trail JSONL path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for the audit trail (overrides audit-out)")
	runCmd.Flags().StringSlice("sim-depositor", nil, "simulated depositor addresses (comma-separated)")
	runCmd.Flags().String("sim-deposit", "1000", "initial deposit per simulated depositor")
	runCmd.Flags().String("sim-fee-balance", "1000000", "fee token balance minted to the vault")
	runCmd.Flags().Duration("sim-ack-delay", 5*time.Second, "loopback acknowledgment delay")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runVault(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	authority := addrOrDefault(cfg.Authority, 0xA0)
	self := addrOrDefault(cfg.VaultAddr, 0xB0)
	tokenAddr := addrOrDefault(cfg.TokenAddr, 0xC0)
	feeTokenAddr := addrOrDefault(cfg.FeeToken, 0xC1)
	_ = feeTokenAddr
	router := addrOrDefault(cfg.Router, 0xD0)
	yieldReceiver := addrOrDefault(cfg.YieldReceiver, 0xE0)
	destReceiver := addrOrDefault(cfg.DestReceiver, 0xE1)
	destSelector := cfg.DestChainSelector
	if destSelector == 0 {
		destSelector = 16015286601757825753 // CCIP-style test selector
	}

	if cfg.LocalAPY < 0 || cfg.LocalAPY > 100 || cfg.RemoteAPY < 0 || cfg.RemoteAPY > 100 {
		return fmt.Errorf("apy must be between 0 and 100")
	}

	depositors, err := config.ParseAddresses(cfg.SimDepositors)
	if err != nil {
		return err
	}
	if len(depositors) == 0 {
		depositors = []common.Address{addrOrDefault("", 0x01), addrOrDefault("", 0x02)}
	}

	seedDeposit, ok := new(big.Int).SetString(cfg.SimDeposit, 10)
	if !ok || seedDeposit.Sign() <= 0 {
		return fmt.Errorf("invalid sim-deposit: %s", cfg.SimDeposit)
	}
	feeBalance, ok := new(big.Int).SetString(cfg.SimFeeBalance, 10)
	if !ok {
		return fmt.Errorf("invalid sim-fee-balance: %s", cfg.SimFeeBalance)
	}

	var sink storage.AuditSink
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = store
	} else {
		sink = storage.NewJsonlStorage(cfg.AuditOut)
	}

	token := asset.NewMemoryToken(self)
	feeToken := asset.NewMemoryToken(self)
	feeToken.Mint(self, feeBalance)
	for _, depositor := range depositors {
		token.Mint(depositor, seedDeposit)
	}
	// Yield accrual pulls from the authority.
	token.Mint(authority, new(big.Int).Mul(seedDeposit, big.NewInt(int64(len(depositors))*100)))

	loopback := transport.NewLoopback(cfg.SimAckDelay, logger)

	v := vault.NewVault(vault.Config{
		Authority: authority,
		Self:      self,
		TokenAddr: tokenAddr,
		Router:    router,
		Params: vault.Params{
			LocalAPY:          uint8(cfg.LocalAPY),
			RemoteAPY:         uint8(cfg.RemoteAPY),
			RebalanceInterval: cfg.RebalanceInterval,
			YieldReceiver:     yieldReceiver,
			Destination: vault.Destination{
				ChainSelector: destSelector,
				Receiver:      destReceiver,
			},
		},
		GasLimit:        cfg.GasLimit,
		AllowOutOfOrder: cfg.AllowOutOfOrder,
	}, token, feeToken, loopback, sink, logger)

	loopback.SetHandler(v.HandleInbound)

	if err := setupAllowlists(v, authority, destSelector, destReceiver, cfg); err != nil {
		return err
	}

	for _, depositor := range depositors {
		if err := v.Deposit(depositor, seedDeposit); err != nil {
			return fmt.Errorf("seed deposit %s: %w", depositor.Hex(), err)
		}
	}

	logger.Info("vault start",
		zap.String("authority", authority.Hex()),
		zap.Int("depositors", len(depositors)),
		zap.String("pool", v.TotalDeposited().String()),
		zap.Uint64("dest_chain_selector", destSelector),
		zap.String("poll_cron", cfg.PollCron),
	)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.PollCron, func() {
		ready, diag := v.CheckAutomation()
		if !ready {
			logger.Debug("automation poll", zap.Strings("blocked_by", diag.Reasons()))
			return
		}
		if err := v.RunAutomation(ctx); err != nil {
			logger.Error("automation run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("register automation poll: %w", err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	<-ctx.Done()
	logger.Info("vault stop", zap.Stringer("state", v.State()))
	return nil
}

func setupAllowlists(v *vault.Vault, authority common.Address, destSelector uint64, destReceiver common.Address, cfg config.Config) error {
	if err := v.AllowDestinationChain(authority, destSelector, true); err != nil {
		return err
	}
	// The loopback venue echoes from the destination, so it must be able to
	// deliver inbound credits.
	if err := v.AllowSourceChain(authority, destSelector, true); err != nil {
		return err
	}
	if err := v.AllowSender(authority, destReceiver, true); err != nil {
		return err
	}

	selectors, err := config.ParseSelectors(cfg.AllowedSourceChains)
	if err != nil {
		return err
	}
	for _, selector := range selectors {
		if err := v.AllowSourceChain(authority, selector, true); err != nil {
			return err
		}
	}

	senders, err := config.ParseAddresses(cfg.AllowedSenders)
	if err != nil {
		return err
	}
	for _, sender := range senders {
		if err := v.AllowSender(authority, sender, true); err != nil {
			return err
		}
	}
	return nil
}

func addrOrDefault(input string, tag byte) common.Address {
	if common.IsHexAddress(input) {
		return common.HexToAddress(input)
	}
	var addr common.Address
	addr[common.AddressLength-1] = tag
	return addr
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
