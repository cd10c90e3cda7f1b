package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pokebrief/gradewatch/internal/model"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	DiscordToken        string
	AlertChannelID      string
	PriceCheckChannelID string
	ServerInfoChannelID string
	GradingAlertsRoleID string
	AutoRoleID          string

	EbayClientID          string
	EbayClientSecret      string
	EbaySandbox           bool
	EbayVerificationToken string
	WebhookAddr           string

	GradingFee      float64
	ProfitThreshold float64
	PollInterval    time.Duration
	CardCooldown    time.Duration
	GlobalCooldown  time.Duration
	SampleSize      int
	SearchLimit     int
	FetchTimeout    time.Duration

	CachePath string
	Cards     []model.Card
}

// Load reads the .env file, falls back to system env vars, and returns a
// populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DiscordToken:        getEnv("DISCORD_TOKEN", ""),
		AlertChannelID:      getEnv("ALERT_CHANNEL_ID", ""),
		PriceCheckChannelID: getEnv("PRICE_CHECK_CHANNEL_ID", ""),
		ServerInfoChannelID: getEnv("SERVER_INFO_CHANNEL_ID", ""),
		GradingAlertsRoleID: getEnv("GRADING_ALERTS_ROLE_ID", ""),
		AutoRoleID:          getEnv("AUTO_ROLE_ID", ""),

		EbayClientID:          getEnv("EBAY_CLIENT_ID", ""),
		EbayClientSecret:      getEnv("EBAY_CLIENT_SECRET", ""),
		EbaySandbox:           getEnvBool("EBAY_SANDBOX", false),
		EbayVerificationToken: getEnv("EBAY_VERIFICATION_TOKEN", ""),
		WebhookAddr:           getEnv("WEBHOOK_ADDR", ""),

		GradingFee:      getEnvFloat("GRADING_FEE", 25.0),
		ProfitThreshold: getEnvFloat("PROFIT_THRESHOLD", 50.0),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 15*time.Minute),
		CardCooldown:    getEnvDuration("CARD_COOLDOWN", 24*time.Hour),
		GlobalCooldown:  getEnvDuration("GLOBAL_COOLDOWN", 5*time.Minute),
		SampleSize:      getEnvInt("SAMPLE_SIZE", 5),
		SearchLimit:     getEnvInt("SEARCH_LIMIT", 50),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 20*time.Second),

		CachePath: getEnv("CACHE_PATH", "./data/reports.json"),
		Cards:     parseCards(getEnv("TRACKED_CARDS", "")),
	}
}

// parseCards decodes the TRACKED_CARDS list: semicolon-separated entries of
// "name|query|grading fee|profit threshold", where everything after the
// name is optional. An empty value falls back to the default watch list.
func parseCards(raw string) []model.Card {
	if strings.TrimSpace(raw) == "" {
		return DefaultCards()
	}

	var cards []model.Card
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.Split(entry, "|")
		card := model.Card{Name: strings.TrimSpace(fields[0])}
		if card.Name == "" {
			continue
		}

		if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
			card.Query = strings.TrimSpace(fields[1])
		} else {
			card.Query = "pokemon " + strings.ToLower(card.Name)
		}
		if len(fields) > 2 {
			if fee, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err == nil && fee > 0 {
				card.GradingFee = fee
			}
		}
		if len(fields) > 3 {
			if threshold, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64); err == nil && threshold > 0 {
				card.ProfitThreshold = threshold
			}
		}

		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return DefaultCards()
	}
	return cards
}

// DefaultCards is the built-in watch list used when TRACKED_CARDS is unset.
func DefaultCards() []model.Card {
	return []model.Card{
		{Name: "Charizard Holo Base Set", Query: "pokemon charizard holo base set"},
		{Name: "Blastoise Base Set", Query: "pokemon blastoise base set holo", ProfitThreshold: 40},
		{Name: "Pikachu Jungle", Query: "pokemon pikachu jungle 1st edition"},
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
