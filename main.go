package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"pitwall-go/cogs"
	"pitwall-go/database"
	"pitwall-go/flow"
	"pitwall-go/utils"
)

func main() {
	if err := run(); err != nil {
		utils.BotErrorf("STARTUP", "%v", err)
		os.Exit(1)
	}
}

func run() error {
	utils.LoadEnvFile()

	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	status := &botStatus{}
	status.Set("starting")

	store, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.StartingChips)
	if err != nil {
		return err
	}
	defer store.Close()
	utils.BotLogf("DATABASE", "Ledger ready (%s)", cfg.DatabaseDriver)

	registry := flow.NewRegistry(time.Minute)
	if err := registry.StartSweeper(cfg.SweepSpec); err != nil {
		return err
	}
	defer registry.Stop()

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers

	bot := cogs.NewBot(session, store, cogs.Options{
		Timeouts:   cfg.Timeouts,
		XPCooldown: cfg.XPCooldown,
		Registry:   registry,
	})

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		utils.BotLogf("DISCORD_API", "Logged in as %s (ID: %s)", r.User.Username, r.User.ID)
		bot.SetSelfID(r.User.ID)
		status.Set("online")

		if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, cfg.GuildID, cogs.Commands()); err != nil {
			utils.BotErrorf("DISCORD_API", "Failed to register slash commands: %v", err)
		}
	})
	session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		bot.HandleInteraction(ctx, i)
	})
	session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		bot.HandleMessage(ctx, m)
	})
	session.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		bot.HandleGuildCreate(ctx, g)
	})

	if err := session.Open(); err != nil {
		status.Set("connection_failed")
		return err
	}
	defer session.Close()
	status.Set("running")
	utils.BotLogf("STARTUP", "Bot is now running. Press CTRL+C to exit.")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newHealthRouter(status, store, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.BotLogf("HEALTH", "Health server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		utils.BotLogf("STARTUP", "Gracefully shutting down...")
		status.Set("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
