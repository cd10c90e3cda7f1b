package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pokebrief/gradewatch/internal/config"
	"github.com/pokebrief/gradewatch/internal/model"
)

const priceCommand = "!price"

// lookupTimeout bounds an on-demand price check triggered from chat.
const lookupTimeout = 30 * time.Second

// Checker answers on-demand price checks. Implemented by the monitor.
type Checker interface {
	Lookup(ctx context.Context, cardName string) (*model.Report, error)
}

// Bot is the Discord front end: it posts buy alerts, answers !price
// commands, assigns the auto-role to new members, and publishes the
// server info embed once per session.
type Bot struct {
	cfg     *config.Config
	session *discordgo.Session
	checker Checker

	serverInfo sync.Once
}

func New(cfg *config.Config, checker Checker) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:     cfg,
		session: session,
		checker: checker,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMemberJoin)
	session.AddHandler(b.onMessage)

	return b, nil
}

// Open connects the gateway session.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close shuts the gateway session down.
func (b *Bot) Close() error {
	return b.session.Close()
}

// PostAlert publishes an approved buy alert to the alert channel,
// mentioning the grading-alerts role when one is configured.
func (b *Bot) PostAlert(report *model.Report, profit float64) error {
	if b.cfg.AlertChannelID == "" {
		return fmt.Errorf("no alert channel configured")
	}

	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{alertEmbed(report, profit)}}
	if b.cfg.GradingAlertsRoleID != "" {
		msg.Content = fmt.Sprintf("<@&%s>", b.cfg.GradingAlertsRoleID)
	}

	sent, err := b.session.ChannelMessageSendComplex(b.cfg.AlertChannelID, msg)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}

	// Vote reactions for the community; a failure here is cosmetic.
	for _, emoji := range []string{"👍", "❌"} {
		if err := b.session.MessageReactionAdd(sent.ChannelID, sent.ID, emoji); err != nil {
			log.Printf("discord: add reaction %s: %v", emoji, err)
		}
	}

	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("discord: logged in as %s, serving %d guild(s)", r.User.String(), len(r.Guilds))

	b.serverInfo.Do(func() {
		if b.cfg.ServerInfoChannelID == "" {
			return
		}
		if _, err := s.ChannelMessageSendEmbed(b.cfg.ServerInfoChannelID, serverInfoEmbed()); err != nil {
			log.Printf("discord: send server info: %v", err)
		}
	})
}

func (b *Bot) onMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User.Bot || b.cfg.AutoRoleID == "" {
		return
	}
	if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, b.cfg.AutoRoleID); err != nil {
		log.Printf("discord: assign auto-role to %s: %v", m.User.Username, err)
		return
	}
	log.Printf("discord: assigned auto-role to %s", m.User.Username)
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, priceCommand) {
		return
	}
	if b.cfg.PriceCheckChannelID != "" && m.ChannelID != b.cfg.PriceCheckChannelID {
		return
	}

	cardName := strings.TrimSpace(strings.TrimPrefix(m.Content, priceCommand))
	if cardName == "" {
		b.reply(s, m.ChannelID, "Usage: `!price <card name>`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	report, err := b.checker.Lookup(ctx, cardName)
	if err != nil {
		log.Printf("discord: price check for %q: %v", cardName, err)
		b.reply(s, m.ChannelID, fmt.Sprintf("❌ Could not fetch prices for '%s', try again later.", cardName))
		return
	}
	if !hasListings(report) {
		b.reply(s, m.ChannelID, fmt.Sprintf("No listings found for '%s'.", cardName))
		return
	}

	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, priceEmbed(report)); err != nil {
		log.Printf("discord: send price embed: %v", err)
	}
}

func (b *Bot) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.Printf("discord: send message: %v", err)
	}
}

func hasListings(report *model.Report) bool {
	for _, stats := range report.Tiers {
		if stats.Count > 0 {
			return true
		}
	}
	return false
}
