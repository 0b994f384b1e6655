package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopstr/greenlight-backend/api/handlers"
	"github.com/shopstr/greenlight-backend/api/servers"
	"github.com/shopstr/greenlight-backend/cmd/flags"
	"github.com/shopstr/greenlight-backend/common"
	"github.com/shopstr/greenlight-backend/credentials"
	"github.com/shopstr/greenlight-backend/greenlight"
	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/shopstr/greenlight-backend/metrics"
	"github.com/shopstr/greenlight-backend/offers"
	"github.com/shopstr/greenlight-backend/seed"
	"github.com/shopstr/greenlight-backend/storage"
	"github.com/shopstr/greenlight-backend/username"
	"github.com/urfave/cli/v2"
)

func main() {
	// Non-credential settings from the environment file become flag defaults.
	// Credentials are left to the loader, which re-reads the file per request.
	loadEnvFile(startupEnvFiles(os.Args[1:], os.LookupEnv))

	app := &cli.App{
		Name:  "greenlight-backend",
		Usage: "Serve BOLT12 offers from hosted Greenlight nodes",
		Flags: append(append(append([]cli.Flag{
			flags.ListenAddrFlag,
			flags.LogServiceFlagFn("greenlight-backend"),
		}, flags.CommonFlags...), flags.GreenlightFlags...), flags.UsernameFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			network, err := interfaces.ParseNetwork(cCtx.String(flags.NetworkFlag.Name))
			if err != nil {
				logger.Error("Invalid network", "err", err)
				return err
			}

			metricsSrv, err := metrics.New(common.PackageName, cCtx.String(flags.MetricsAddrFlag.Name))
			if err != nil {
				logger.Error("Failed to create metrics server", "err", err)
				return err
			}

			storageFactory := storage.NewStorageBackendFactory(logger)

			loaderCfg := credentials.Config{
				EnvFiles: cCtx.StringSlice(flags.EnvFileFlag.Name),
				Metrics:  metricsSrv.Recorder(),
			}
			if uris := cCtx.StringSlice(flags.CredentialStoreFlag.Name); len(uris) > 0 {
				loaderCfg.Store, err = storageFactory.CreateMultiBackend(uris)
				if err != nil {
					logger.Error("Failed to create credential store", "err", err)
					return err
				}
			}
			loader := credentials.NewLoader(loaderCfg, logger)

			seeds, err := setupSeeds(cCtx, network, storageFactory, logger)
			if err != nil {
				logger.Error("Failed to set up seed provider", "err", err)
				return err
			}

			glCfg := greenlight.Config{
				SchedulerURL: cCtx.String(flags.SchedulerURLFlag.Name),
				Timeout:      cCtx.Duration(flags.RequestTimeoutFlag.Name),
			}
			if caFile := cCtx.String(flags.SchedulerCAFileFlag.Name); caFile != "" {
				glCfg.CACert, err = os.ReadFile(caFile)
				if err != nil {
					logger.Error("Failed to read scheduler CA bundle", "file", caFile, "err", err)
					return err
				}
			}

			orchestrator := offers.NewOrchestrator(offers.Config{
				Network:     network,
				Description: cCtx.String(flags.OfferDescriptionFlag.Name),
				InviteCode:  cCtx.String(flags.InviteCodeFlag.Name),
			}, loader, greenlight.NewClient(glCfg, logger), seeds, metricsSrv.Recorder(), logger)

			usernames, err := setupUsernames(cCtx, logger)
			if err != nil {
				logger.Error("Failed to set up username service", "err", err)
				return err
			}

			if !loader.Available(cCtx.Context) {
				logger.Warn("Developer credentials not found, offer creation will fail until they are provided")
			}

			handler := handlers.NewHandler(orchestrator, loader, usernames, logger)

			cfg := flags.ConfigureServer(cCtx, logger, metricsSrv)
			server, err := servers.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Greenlight backend starting", "listenAddress", cfg.ListenAddr,
				"network", network, "seedMode", seeds.Mode())
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupSeeds(cCtx *cli.Context, network interfaces.Network, factory *storage.StorageBackendFactory, logger *slog.Logger) (seed.Provider, error) {
	mode, err := seed.ParseMode(cCtx.String(flags.SeedModeFlag.Name))
	if err != nil {
		return nil, err
	}

	cfg := seed.Config{
		Mode:         mode,
		MasterSecret: cCtx.String(flags.SeedSecretFlag.Name),
		Network:      network,
	}
	if mode == seed.ModePersisted {
		uris := cCtx.StringSlice(flags.SeedStoreFlag.Name)
		if len(uris) == 0 {
			return nil, errors.New("--seed-store is required for the persisted seed mode")
		}
		cfg.Store, err = factory.CreateMultiBackend(uris)
		if err != nil {
			return nil, fmt.Errorf("failed to create seed store: %w", err)
		}
	}
	return seed.NewProvider(cfg, logger)
}

func setupUsernames(cCtx *cli.Context, logger *slog.Logger) (handlers.UsernameService, error) {
	domain := cCtx.String(flags.UsernameDomainFlag.Name)
	if domain == "" {
		logger.Info("No username domain configured, username endpoints disabled")
		return nil, nil
	}

	svc, err := username.NewService(username.Config{
		Domain:             domain,
		CloudflareAPIToken: cCtx.String(flags.CloudflareTokenFlag.Name),
		CloudflareZoneID:   cCtx.String(flags.CloudflareZoneFlag.Name),
		CloudflareAPIURL:   cCtx.String(flags.CloudflareAPIURLFlag.Name),
		Development:        cCtx.Bool(flags.DevelopmentFlag.Name),
		Resolver:           cCtx.String(flags.DNSResolverFlag.Name),
	}, logger)
	if err != nil {
		return nil, err
	}
	if svc.Simulated() {
		logger.Warn("Cloudflare credentials missing, DNS records will be simulated")
	}
	return svc, nil
}

// startupEnvFiles returns the env files named by --env-file or ENV_FILE,
// in that order of precedence, falling back to the defaults.
func startupEnvFiles(args []string, lookup func(string) (string, bool)) []string {
	var files []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if arg == name {
			continue
		}
		switch {
		case strings.HasPrefix(name, flags.EnvFileFlag.Name+"="):
			files = append(files, strings.TrimPrefix(name, flags.EnvFileFlag.Name+"="))
		case name == flags.EnvFileFlag.Name && i+1 < len(args):
			files = append(files, args[i+1])
			i++
		}
	}
	if len(files) > 0 {
		return files
	}
	if v, ok := lookup("ENV_FILE"); ok && v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
		return files
	}
	return credentials.DefaultEnvFiles
}

// loadEnvFile exports the first readable env file into the process
// environment, skipping credential variables and variables already set.
func loadEnvFile(files []string) {
	for _, name := range files {
		vars, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range vars {
			if strings.HasPrefix(k, "GL_CERT_") || strings.HasPrefix(k, "GL_KEY_") {
				continue
			}
			if _, set := os.LookupEnv(k); !set {
				os.Setenv(k, v)
			}
		}
		return
	}
}
