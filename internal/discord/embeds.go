package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pokebrief/gradewatch/internal/analysis"
	"github.com/pokebrief/gradewatch/internal/model"
	"github.com/pokebrief/gradewatch/internal/tier"
)

const (
	colorBlue   = 0x3498db
	colorOrange = 0xe67e22

	footerText = "PokeBrief GradeWatch — Smarter Investing in Pokémon"
	logoURL    = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/items/ultra-ball.png"
)

// alertEmbed renders an approved buy alert. Prices come through
// analysis.Money so a tier with no listings shows a dash, never $0.00.
func alertEmbed(report *model.Report, profit float64) *discordgo.MessageEmbed {
	raw := report.Tiers[tier.Raw]
	psa9 := report.Tiers[tier.Grade9]
	psa10 := report.Tiers[tier.Grade10]

	return &discordgo.MessageEmbed{
		Title:       "🔥 Buy Alert!",
		Description: fmt.Sprintf("**%s** is showing great potential for grading and resale!", report.Card.Name),
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🪙 Raw Avg", Value: analysis.Money(raw.Average), Inline: true},
			{Name: "💠 PSA 9 Avg", Value: analysis.Money(psa9.Average), Inline: true},
			{Name: "💎 PSA 10 Avg", Value: analysis.Money(psa10.Average), Inline: true},
			{Name: "📈 Estimated Profit", Value: fmt.Sprintf("$%.2f", profit), Inline: false},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: logoURL},
		Footer:    &discordgo.MessageEmbedFooter{Text: footerText, IconURL: logoURL},
		Timestamp: report.FetchedAt.Format(time.RFC3339),
	}
}

// priceEmbed renders an on-demand price check.
func priceEmbed(report *model.Report) *discordgo.MessageEmbed {
	raw := report.Tiers[tier.Raw]
	psa9 := report.Tiers[tier.Grade9]
	psa10 := report.Tiers[tier.Grade10]

	fields := []*discordgo.MessageEmbedField{
		{Name: "Raw Avg", Value: analysis.Money(raw.Average), Inline: true},
		{Name: "PSA 9 Avg", Value: analysis.Money(psa9.Average), Inline: true},
		{Name: "PSA 10 Avg", Value: analysis.Money(psa10.Average), Inline: true},
		{Name: "💰 Potential Profit (PSA 10)", Value: analysis.Money(report.Profits[tier.Grade10]), Inline: false},
	}

	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("💳 %s Price Check", report.Card.Name),
		Color:     colorBlue,
		Fields:    fields,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: logoURL},
		Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
		Timestamp: report.FetchedAt.Format(time.RFC3339),
	}
}

// serverInfoEmbed is the one-time welcome post for the server info channel.
func serverInfoEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎴 Welcome to PokeBrief TCG!",
		Description: "*Your premier destination for Pokémon TCG news, deals, and market insights*",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🔍 **What We Offer**",
				Value: "• 📦 **Restock Alerts** - Never miss a drop\n" +
					"• 💰 **Price Tracking** - Live market data\n" +
					"• 🛒 **Deal Notifications** - Best prices found\n" +
					"• 📈 **Market Analysis** - Trends & insights",
			},
			{
				Name: "🤖 **Smart Tools & Bots**",
				Value: "• 📊 Real-time price monitoring\n" +
					"• 💎 Grading profit calculators\n" +
					"• 🔔 Custom alert systems\n" +
					"• 📋 Collection management",
			},
			{
				Name: "🌟 **Community Features**",
				Value: "• 💬 Active trading discussions\n" +
					"• 📸 Card showcase channels\n" +
					"• 🎯 Expert advice & tips\n" +
					"• 🏆 Exclusive member perks",
			},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: logoURL},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "🚀 Ready to level up your TCG game? Let's collect! 🚀",
			IconURL: "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/items/master-ball.png",
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
