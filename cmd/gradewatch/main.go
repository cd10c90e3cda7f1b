package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pokebrief/gradewatch/internal/alert"
	"github.com/pokebrief/gradewatch/internal/cache"
	"github.com/pokebrief/gradewatch/internal/config"
	"github.com/pokebrief/gradewatch/internal/discord"
	"github.com/pokebrief/gradewatch/internal/ebay"
	"github.com/pokebrief/gradewatch/internal/monitor"
	"github.com/pokebrief/gradewatch/internal/scraper"
	"github.com/pokebrief/gradewatch/internal/tier"
	"github.com/pokebrief/gradewatch/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("gradewatch: %v", err)
	}
}

func run() error {
	cfg := config.Load()
	if cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}

	source := pickSource(cfg)
	if !source.Available() {
		return fmt.Errorf("no listing source available")
	}

	classifier, err := tier.NewClassifier(tier.DefaultTiers(), cfg.SampleSize)
	if err != nil {
		return fmt.Errorf("build tier classifier: %w", err)
	}

	reports, err := cache.New(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open report cache: %w", err)
	}

	gate := alert.NewGate(cfg.CardCooldown, cfg.GlobalCooldown)

	mon := monitor.New(monitor.Config{
		PollInterval:    cfg.PollInterval,
		FetchTimeout:    cfg.FetchTimeout,
		SearchLimit:     cfg.SearchLimit,
		SampleSize:      cfg.SampleSize,
		GradingFee:      cfg.GradingFee,
		ProfitThreshold: cfg.ProfitThreshold,
	}, cfg.Cards, source, classifier, gate, reports)

	bot, err := discord.New(cfg, mon)
	if err != nil {
		return fmt.Errorf("create discord bot: %w", err)
	}
	mon.SetNotifier(bot)

	if err := bot.Open(); err != nil {
		return err
	}
	defer bot.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mon.Start(ctx); err != nil {
		return err
	}

	var wh *webhook.Server
	if cfg.WebhookAddr != "" {
		wh = webhook.New(cfg.WebhookAddr, cfg.EbayVerificationToken)
		go func() {
			if err := wh.Start(); err != nil {
				log.Printf("gradewatch: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("gradewatch: shutting down")
	cancel()
	mon.Stop()
	if wh != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := wh.Shutdown(shutdownCtx); err != nil {
			log.Printf("gradewatch: webhook shutdown: %v", err)
		}
	}
	return nil
}

// pickSource prefers the Browse API when credentials are configured and
// falls back to scraping sold listings otherwise.
func pickSource(cfg *config.Config) monitor.Source {
	if cfg.EbayClientID != "" && cfg.EbayClientSecret != "" {
		tokens := ebay.NewTokenSource(cfg.EbayClientID, cfg.EbayClientSecret, cfg.EbaySandbox)
		log.Println("gradewatch: using eBay Browse API source")
		return ebay.NewClient(tokens, cfg.EbaySandbox)
	}
	log.Println("gradewatch: no eBay credentials, using sold-listings scraper")
	return scraper.NewSoldScraper()
}
