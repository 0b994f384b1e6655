package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopstr/greenlight-backend/api"
	"github.com/shopstr/greenlight-backend/common"
	"github.com/shopstr/greenlight-backend/metrics"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, metricsSrv *metrics.MetricsServer) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Metrics:                  metricsSrv,
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		CORSMaxAge:               time.Hour,
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		// The handshake makes several remote calls before the response is written.
		WriteTimeout: 120 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   api.DefaultListenAddr,
	Usage:   "address to listen on for API",
	EnvVars: []string{"LISTEN_ADDR"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	Usage:   "log in JSON format",
	EnvVars: []string{"LOG_JSON"},
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	Usage:   "log debug messages",
	EnvVars: []string{"LOG_DEBUG"},
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics, empty to disable",
	EnvVars: []string{"METRICS_ADDR"},
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}

// Greenlight

var NetworkFlag = &cli.StringFlag{
	Name:    "network",
	Value:   "bitcoin",
	Usage:   "network hosted nodes run on: bitcoin, testnet, signet or regtest",
	EnvVars: []string{"GL_NETWORK"},
}
var SchedulerURLFlag = &cli.StringFlag{
	Name:     "scheduler-url",
	Usage:    "base URL of the JSON scheduler gateway fronting Greenlight",
	EnvVars:  []string{"GL_SCHEDULER_URL"},
	Required: true,
}
var SchedulerCAFileFlag = &cli.StringFlag{
	Name:    "scheduler-ca-file",
	Usage:   "PEM bundle the scheduler and node certificates must chain to, system roots if empty",
	EnvVars: []string{"GL_CA_PATH"},
}
var InviteCodeFlag = &cli.StringFlag{
	Name:    "invite-code",
	Usage:   "invite code passed to node registration",
	EnvVars: []string{"GL_INVITE_CODE"},
}
var OfferDescriptionFlag = &cli.StringFlag{
	Name:    "offer-description",
	Value:   "Shopstr username registration",
	Usage:   "description attached to created offers",
	EnvVars: []string{"OFFER_DESCRIPTION"},
}
var RequestTimeoutFlag = &cli.DurationFlag{
	Name:  "request-timeout",
	Value: 30 * time.Second,
	Usage: "timeout of each scheduler and node request",
}

// Credentials and seeds

var EnvFileFlag = &cli.StringSliceFlag{
	Name:    "env-file",
	Value:   cli.NewStringSlice(".env", "../.env"),
	Usage:   "environment files tried in order, the first one found is used",
	EnvVars: []string{"ENV_FILE"},
}
var CredentialStoreFlag = &cli.StringSliceFlag{
	Name:    "credential-store",
	Usage:   "storage URIs (file://, s3://, vault://, ipfs://) holding client.crt and client-key.pem when env and disk have neither",
	EnvVars: []string{"GL_CREDENTIAL_STORE"},
}
var SeedModeFlag = &cli.StringFlag{
	Name:    "seed-mode",
	Value:   "request",
	Usage:   "signing seed lifecycle: request, process, derived or persisted",
	EnvVars: []string{"GL_SEED_MODE"},
}
var SeedSecretFlag = &cli.StringFlag{
	Name:    "seed-master-secret",
	Usage:   "hex master secret for the derived seed mode",
	EnvVars: []string{"GL_SEED_SECRET"},
}
var SeedStoreFlag = &cli.StringSliceFlag{
	Name:    "seed-store",
	Usage:   "storage URIs keeping the persisted seed",
	EnvVars: []string{"GL_SEED_STORE"},
}

// Usernames

var UsernameDomainFlag = &cli.StringFlag{
	Name:    "username-domain",
	Usage:   "domain usernames are published under, disables username endpoints if empty",
	EnvVars: []string{"DOMAIN"},
}
var CloudflareTokenFlag = &cli.StringFlag{
	Name:    "cloudflare-api-token",
	Usage:   "Cloudflare API token with DNS edit permission",
	EnvVars: []string{"CLOUDFLARE_API_TOKEN"},
}
var CloudflareZoneFlag = &cli.StringFlag{
	Name:    "cloudflare-zone-id",
	Usage:   "Cloudflare zone of the username domain",
	EnvVars: []string{"CLOUDFLARE_ZONE_ID"},
}
var CloudflareAPIURLFlag = &cli.StringFlag{
	Name:  "cloudflare-api-url",
	Value: "https://api.cloudflare.com/client/v4",
	Usage: "Cloudflare API base URL",
}
var DevelopmentFlag = &cli.BoolFlag{
	Name:    "development",
	Usage:   "simulate DNS records when Cloudflare is not configured",
	EnvVars: []string{"DEVELOPMENT"},
}
var DNSResolverFlag = &cli.StringFlag{
	Name:    "dns-resolver",
	Value:   "1.1.1.1:53",
	Usage:   "DNS server used to resolve usernames",
	EnvVars: []string{"DNS_RESOLVER"},
}

var GreenlightFlags = []cli.Flag{
	NetworkFlag,
	SchedulerURLFlag,
	SchedulerCAFileFlag,
	InviteCodeFlag,
	OfferDescriptionFlag,
	RequestTimeoutFlag,
	EnvFileFlag,
	CredentialStoreFlag,
	SeedModeFlag,
	SeedSecretFlag,
	SeedStoreFlag,
}

var UsernameFlags = []cli.Flag{
	UsernameDomainFlag,
	CloudflareTokenFlag,
	CloudflareZoneFlag,
	CloudflareAPIURLFlag,
	DevelopmentFlag,
	DNSResolverFlag,
}
