package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// Configuration defaults applied when the corresponding env variable is unset.
const (
	defaultClaimTTL      = 30 * time.Minute
	defaultSweepCronSpec = "@every 5m"
	defaultVATRate       = "0.15"
	defaultNightFee      = "25"
	defaultCourierShare  = "0.70"
)

// Config carries the raw environment values the application starts from.
// Typed accessors parse the values that are not plain strings and fall back
// to defaults when a variable is unset.
type Config struct {
	HTTPPort        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSslMode       string
	ClaimTTL        string
	SweepCronSpec   string
	VATRate         string
	NightFee        string
	CourierShare    string
	ZoneTariffs     string
	RoutingBaseURL  string
	NotifyEndpoint  string
	OperatorContact string
}

// DSN builds the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// ParseClaimTTL returns the publication window after which unclaimed
// deliveries are swept.
func (c Config) ParseClaimTTL() (time.Duration, error) {
	if c.ClaimTTL == "" {
		return defaultClaimTTL, nil
	}
	ttl, err := time.ParseDuration(c.ClaimTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid CLAIM_TTL: %w", err)
	}
	return ttl, nil
}

// ParseSweepCronSpec returns the cron spec driving the expiry sweeper.
func (c Config) ParseSweepCronSpec() string {
	if c.SweepCronSpec == "" {
		return defaultSweepCronSpec
	}
	return c.SweepCronSpec
}

// ParseVATRate returns the additive tax rate applied on top of the final price.
func (c Config) ParseVATRate() (decimal.Decimal, error) {
	return parseRate("VAT_RATE", c.VATRate, defaultVATRate)
}

// ParseNightFee returns the flat surcharge for night deliveries.
func (c Config) ParseNightFee() (decimal.Decimal, error) {
	return parseRate("NIGHT_FEE", c.NightFee, defaultNightFee)
}

// ParseCourierShare returns the courier fraction of the final price.
func (c Config) ParseCourierShare() (decimal.Decimal, error) {
	return parseRate("COURIER_SHARE", c.CourierShare, defaultCourierShare)
}

// ParseZoneTariffs decodes the tariff table from its JSON env value:
//
//	{"Damascus": {"base_price": "50", "price_per_km": "4"}}
//
// An empty value yields the built-in city table.
func (c Config) ParseZoneTariffs() (map[string]services.ZoneTariff, error) {
	if c.ZoneTariffs == "" {
		return defaultZoneTariffs(), nil
	}

	var raw map[string]struct {
		BasePrice  decimal.Decimal `json:"base_price"`
		PricePerKm decimal.Decimal `json:"price_per_km"`
	}
	if err := json.Unmarshal([]byte(c.ZoneTariffs), &raw); err != nil {
		return nil, fmt.Errorf("invalid ZONE_TARIFFS: %w", err)
	}

	zones := make(map[string]services.ZoneTariff, len(raw))
	for name, tariff := range raw {
		zones[name] = services.ZoneTariff{
			BasePrice:  tariff.BasePrice,
			PricePerKm: tariff.PricePerKm,
		}
	}
	return zones, nil
}

func parseRate(name, value, fallback string) (decimal.Decimal, error) {
	if value == "" {
		value = fallback
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return rate, nil
}

func defaultZoneTariffs() map[string]services.ZoneTariff {
	return map[string]services.ZoneTariff{
		"Damascus": {
			BasePrice:  decimal.NewFromInt(50),
			PricePerKm: decimal.NewFromInt(4),
		},
		"Rural Damascus": {
			BasePrice:  decimal.NewFromInt(40),
			PricePerKm: decimal.NewFromInt(6),
		},
	}
}
