package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shipshift/quorum/coordinator"
	"github.com/shipshift/quorum/engine/rpc"
	"github.com/shipshift/quorum/module/broadcaster"
	"github.com/shipshift/quorum/module/builder/remote"
	"github.com/shipshift/quorum/module/metrics"
	"github.com/shipshift/quorum/orchestrator"
	bstorage "github.com/shipshift/quorum/storage/badger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quorum",
		Short: "multi-signature witness collection service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	cmd.Flags().String("listen", ":8034", "address for the HTTP API")
	cmd.Flags().String("metrics-listen", ":9034", "address for the metrics endpoint")
	cmd.Flags().String("datadir", "data", "directory for the badger database")
	cmd.Flags().String("api-url", "https://msg.shipshift.io/api", "base URL of the transaction build/submit API")
	cmd.Flags().String("loglevel", "info", "log level (debug, info, warn, error)")

	viper.SetEnvPrefix("QUORUM")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}

func run() error {
	level, err := zerolog.ParseLevel(viper.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	db, err := badger.Open(badger.
		DefaultOptions(viper.GetString("datadir")).
		WithLogger(nil))
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer db.Close()

	actions := bstorage.NewPendingActions(db)
	witnesses := bstorage.NewWitnesses(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	apiURL := viper.GetString("api-url")
	broadcast := broadcaster.NewClient(log, httpClient, apiURL)
	builder := remote.NewBuilder(log, httpClient, apiURL)

	collector := metrics.NewMultisigCollector()
	coord := coordinator.New(log, collector, actions, witnesses, broadcast)
	orch := orchestrator.New(log, builder, coord)

	// resolve actions that were mid-broadcast when the last process died
	recoveryCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err = coord.RecoverInFlight(recoveryCtx)
	cancel()
	if err != nil {
		// recovery failures leave actions in submitting for the next run
		log.Warn().Err(err).Msg("in-flight recovery incomplete")
	}

	engine := rpc.New(log, orch, coord, witnesses)
	apiServer := engine.Server(viper.GetString("listen"))

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    viper.GetString("metrics-listen"),
		Handler: metricsMux,
	}

	errs := make(chan error, 2)
	go func() {
		log.Info().Str("addr", apiServer.Addr).Msg("serving API")
		errs <- apiServer.ListenAndServe()
	}()
	go func() {
		log.Info().Str("addr", metricsServer.Addr).Msg("serving metrics")
		errs <- metricsServer.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errs:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	return nil
}
