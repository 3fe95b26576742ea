package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/cache"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/publish"
	"github.com/smokyabdulrahman/masjid-display/internal/server"
	"github.com/smokyabdulrahman/masjid-display/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the display daemon",
		Long: `Serve boards and settings over HTTP and WebSocket.

Configured from the environment (or a .env file):
  SERVER_ADDRESS    listen address (default :8080)
  SETTINGS_STORE    file, postgres or redis (default file)
  DATABASE_URL      Postgres connection string
  REDIS_ADDRESS     Redis host:port, also enables board publishing
  REDIS_USERNAME    Redis username
  REDIS_PASSWORD    Redis password
  MQTT_BROKER       MQTT broker URL, e.g. tcp://localhost:1883
  API_BEARER_TOKEN  token required by write endpoints
  PUBLIC_BASE_URL   base URL encoded in QR codes
  MOSQUE_ID         mosque started at boot (default "default")
  LOG_LEVEL         debug, info, warn or error`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	setupLogger(env.LogLevel, true)

	s, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if env.RedisAddress != "" {
		rdb = store.NewRedisClient(env.RedisAddress, env.RedisUsername, env.RedisPassword)
		defer rdb.Close()
	}

	st, closeStore, err := openStore(ctx, env, rdb)
	if err != nil {
		return err
	}
	defer closeStore()

	var srv *server.Server
	mqttClients := &mqttSet{}
	defer mqttClients.closeAll()

	sinks := func(id string) []board.Sink {
		var out []board.Sink
		if rdb != nil {
			out = append(out, publish.NewRedis(rdb, id))
		}
		if env.MQTTBroker != "" {
			m, err := publish.DialMQTT(env.MQTTBroker, id, func(c publish.Command) {
				handleCommand(ctx, srv, st, id, c)
			})
			if err != nil {
				log.Error().Err(err).Str("mosque", id).Msg("MQTT publishing disabled")
			} else {
				mqttClients.add(m)
				out = append(out, m)
			}
		}
		return out
	}

	srv = server.New(ctx, server.Options{
		Store:         st,
		Source:        cache.NewDaily(newCalculator(s, openCache(s))),
		Token:         env.APIBearerToken,
		PublicBaseURL: env.PublicBaseURL,
		Sinks:         sinks,
	})

	if _, err := srv.Runner(ctx, env.MosqueID); err != nil {
		return fmt.Errorf("starting mosque %s: %w", env.MosqueID, err)
	}

	log.Info().
		Str("store", env.SettingsStore).
		Str("mosque", env.MosqueID).
		Bool("mqtt", env.MQTTBroker != "").
		Bool("redis", rdb != nil).
		Msg("starting display daemon")
	return srv.Run(ctx, env.ServerAddress)
}

// openStore builds the configured settings store and its cleanup.
func openStore(ctx context.Context, env config.Env, rdb *redis.Client) (store.Store, func(), error) {
	switch env.SettingsStore {
	case config.StorePostgres:
		pg, err := store.NewPostgres(ctx, env.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.StoreRedis:
		return store.NewRedis(rdb), func() {}, nil
	default:
		dir, err := settingsDir()
		if err != nil {
			return nil, nil, err
		}
		return store.FileStore{Dir: dir}, func() {}, nil
	}
}

// handleCommand applies a command received over MQTT.
func handleCommand(ctx context.Context, srv *server.Server, st store.Store, id string, c publish.Command) {
	r, err := srv.Runner(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("mosque", id).Msg("command for unknown mosque")
		return
	}
	switch c {
	case publish.CommandDismiss:
		r.Dismiss()
	case publish.CommandReload:
		s, _, err := store.Load(ctx, st, id)
		if err != nil {
			log.Error().Err(err).Str("mosque", id).Msg("reloading settings")
			return
		}
		if err := r.Reload(s); err != nil {
			log.Error().Err(err).Str("mosque", id).Msg("reloading settings")
		}
	}
	log.Info().Str("mosque", id).Str("command", string(c)).Msg("command applied")
}

// mqttSet tracks connections opened for runners so they are closed on exit.
type mqttSet struct {
	mu      sync.Mutex
	clients []*publish.MQTT
}

func (m *mqttSet) add(c *publish.MQTT) {
	m.mu.Lock()
	m.clients = append(m.clients, c)
	m.mu.Unlock()
}

func (m *mqttSet) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		c.Close()
	}
}
