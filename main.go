package main

import (
	"context"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bot"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/config"
	"github.com/mauv0809/squadroll/internal/database"
	"github.com/mauv0809/squadroll/internal/discord"
	"github.com/mauv0809/squadroll/internal/guildlock"
	server "github.com/mauv0809/squadroll/internal/http"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	discordnotifier "github.com/mauv0809/squadroll/internal/notifier/discord"
	"github.com/mauv0809/squadroll/internal/notifier/slack"
	"github.com/mauv0809/squadroll/internal/processor"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/session"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/voice"
)

const sweepInterval = time.Minute

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	publicKey, err := hex.DecodeString(cfg.Discord.PublicKey)
	if err != nil {
		log.Fatalf("Invalid Discord public key: %s", err)
	}

	snapshots := snapshot.New(db)
	sessions := session.New(db)
	tournaments := bracket.NewStore(db)
	arenas := arena.NewStore(db)
	ratingStore := ratings.New(db)
	channels := voice.NewStore(db)

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	usage := metrics.New(db)

	var riotClient riot.RiotClient
	if cfg.Riot.APIKey != "" {
		riotClient = riot.NewClient(cfg.Riot.APIKey, cfg.Riot.RPS)
	} else {
		log.Info("No Riot API key configured, rank imports are disabled")
	}
	resolver := ratings.NewResolver(ratingStore, riotClient, metricsSvc, usage)

	dg, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %s", err)
	}
	presence := voice.NewDiscordAPI(dg)
	voiceMgr := voice.NewManager(presence, channels, metricsSvc)

	var announcer notifier.Notifier = discordnotifier.NewNotifier(dg, metricsSvc, usage, cfg.Features.TrashTalk)
	if cfg.Slack.Token != "" {
		mirror := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc, cfg.Features.TrashTalk, nil)
		announcer = notifier.NewMulti(announcer, mirror)
		log.Info("Mirroring announcements to Slack", "channel", cfg.Slack.ChannelID)
	}

	proc := processor.New(processor.Stores{
		Snapshots:   snapshots,
		Tournaments: tournaments,
		Arenas:      arenas,
	}, announcer, metricsSvc, usage)

	var events pubsub.PubSubClient
	if cfg.ProjectID != "" {
		events = pubsub.New(cfg.ProjectID)
	} else {
		log.Info("No Pub/Sub project configured, dispatching events in-process")
		events = pubsub.NewLocal(proc.HandleMessage)
	}
	defer events.Close()

	b := bot.New(bot.Deps{
		Snapshots:   snapshots,
		Sessions:    sessions,
		Tournaments: tournaments,
		Arenas:      arenas,
		Ratings:     ratingStore,
		Resolver:    resolver,
		Voice:       voiceMgr,
		Presence:    presence,
		Notifier:    announcer,
		PubSub:      events,
		Metrics:     metricsSvc,
		Usage:       usage,
		Locks:       guildlock.New(),
		OwnerID:     cfg.OwnerID,
		Attempts:    cfg.Features.RollAttempts,
		VoiceTTL:    cfg.Features.VoiceTTL,
	})

	if err := discord.RegisterCommands(dg, cfg.Discord.AppID, cfg.Discord.GuildID); err != nil {
		log.Error("Slash commands were not registered", "error", err)
	}

	if cfg.Features.Gateway {
		gateway := discord.NewGateway(dg, b, true)
		if err := gateway.Open(); err != nil {
			log.Fatalf("Failed to connect to the gateway: %s", err)
		}
		defer gateway.Close()
	}

	s := server.NewServer(server.Deps{
		Bot:            b,
		Events:         proc,
		PubSub:         events,
		Voice:          voiceMgr,
		Snapshots:      snapshots,
		Tournaments:    tournaments,
		Arenas:         arenas,
		Ratings:        ratingStore,
		Usage:          usage,
		MetricsHandler: metricsHandler,
		PublicKey:      publicKey,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	defer stopSweeps()
	go sweepVoiceChannels(sweepCtx, voiceMgr)

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// sweepVoiceChannels removes expired team channels until ctx is cancelled.
// The POST /voice/sweep endpoint does the same for externally scheduled runs.
func sweepVoiceChannels(ctx context.Context, mgr voice.VoiceManager) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := mgr.Sweep(ctx, now); err != nil {
				log.Error("Voice sweep failed", "error", err)
			}
		}
	}
}
