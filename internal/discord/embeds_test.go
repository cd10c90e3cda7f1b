package discord

import (
	"testing"
	"time"

	"github.com/pokebrief/gradewatch/internal/model"
	"github.com/pokebrief/gradewatch/internal/tier"
)

func fptr(v float64) *float64 { return &v }

func sampleReport() *model.Report {
	return &model.Report{
		Card: model.Card{Name: "Charizard Holo Base Set"},
		Tiers: map[string]model.TierStats{
			tier.Raw:     {Count: 3, Average: fptr(120.50)},
			tier.Grade9:  {Count: 0},
			tier.Grade10: {Count: 2, Average: fptr(850)},
		},
		Profits: map[string]*float64{
			tier.Grade9:  nil,
			tier.Grade10: fptr(704.50),
		},
		FetchedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestAlertEmbed_MissingTierShowsDashNotZero(t *testing.T) {
	embed := alertEmbed(sampleReport(), 704.50)

	if len(embed.Fields) != 4 {
		t.Fatalf("fields = %d, want 4", len(embed.Fields))
	}
	if got := embed.Fields[0].Value; got != "$120.50" {
		t.Errorf("raw field = %q, want $120.50", got)
	}
	if got := embed.Fields[1].Value; got != "—" {
		t.Errorf("psa9 field = %q, want dash for missing data", got)
	}
	if got := embed.Fields[2].Value; got != "$850.00" {
		t.Errorf("psa10 field = %q, want $850.00", got)
	}
	if got := embed.Fields[3].Value; got != "$704.50" {
		t.Errorf("profit field = %q, want $704.50", got)
	}
}

func TestPriceEmbed_TitleAndProfit(t *testing.T) {
	embed := priceEmbed(sampleReport())

	want := "💳 Charizard Holo Base Set Price Check"
	if embed.Title != want {
		t.Errorf("title = %q, want %q", embed.Title, want)
	}
	if got := embed.Fields[3].Value; got != "$704.50" {
		t.Errorf("profit field = %q, want $704.50", got)
	}
}

func TestPriceEmbed_NilProfitShowsDash(t *testing.T) {
	report := sampleReport()
	report.Profits[tier.Grade10] = nil

	embed := priceEmbed(report)
	if got := embed.Fields[3].Value; got != "—" {
		t.Errorf("profit field = %q, want dash when not computable", got)
	}
}

func TestHasListings(t *testing.T) {
	report := sampleReport()
	if !hasListings(report) {
		t.Error("hasListings() = false for a report with data")
	}

	empty := &model.Report{
		Card: model.Card{Name: "Mewtwo"},
		Tiers: map[string]model.TierStats{
			tier.Raw:     {},
			tier.Grade9:  {},
			tier.Grade10: {},
		},
	}
	if hasListings(empty) {
		t.Error("hasListings() = true for a report with no listings")
	}
}
