package portfolio

import (
	"strings"

	"marketpulse/pkg/errors"
)

// Item is one externally supplied portfolio position
type Item struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	AssetType string   `json:"asset_type"`
	Sector    string   `json:"sector,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
}

// Validate checks the fields needed for matching
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.NewValidationError("id", "required", i.ID)
	}
	if strings.TrimSpace(i.Name) == "" && strings.TrimSpace(i.Symbol) == "" {
		return errors.NewValidationError("name", "name or symbol required", i.Name)
	}
	return nil
}

// MatchType is the strategy that linked an asset to a driver
type MatchType string

const (
	MatchTicker MatchType = "ticker"
	MatchAlias  MatchType = "alias"
	MatchSector MatchType = "sector"
)

// Confidence is the fixed confidence of each tier
func (m MatchType) Confidence() float64 {
	switch m {
	case MatchTicker:
		return 0.8
	case MatchAlias:
		return 0.6
	case MatchSector:
		return 0.4
	default:
		return 0
	}
}

// Scale is the sensitivity multiplier of each tier
func (m MatchType) Scale() float64 {
	switch m {
	case MatchTicker:
		return 1.0
	case MatchAlias:
		return 0.7
	case MatchSector:
		return 0.4
	default:
		return 0
	}
}

// AssetMapping links one portfolio asset to one driver
type AssetMapping struct {
	DriverID          string    `json:"driver_id"`
	AssetID           string    `json:"asset_id"`
	AssetName         string    `json:"asset_name"`
	Symbol            string    `json:"symbol,omitempty"`
	MatchType         MatchType `json:"match_type"`
	Confidence        float64   `json:"confidence"`
	Sensitivity       float64   `json:"sensitivity"`
	ImpactDescription string    `json:"impact_description"`
}
