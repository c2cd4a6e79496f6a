package driver

import (
	"github.com/google/uuid"

	"marketpulse/internal/domain/sentiment"
)

// Kind is the grouping pass that produced a driver
type Kind string

const (
	KindSector  Kind = "sector"
	KindKeyword Kind = "keyword"
)

// Weight is the fixed category multiplier in the driver score. Sector groups
// outrank keyword groups of the same size.
func (k Kind) Weight() float64 {
	if k == KindSector {
		return 2.0
	}
	return 1.0
}

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("marketpulse/driver"))

// NewID derives a stable id from kind and label
func NewID(kind Kind, label string) string {
	return uuid.NewSHA1(namespace, []byte(string(kind)+":"+label)).String()
}

// Driver is a thematic cluster of articles treated as one macro signal
type Driver struct {
	ID                string          `json:"id"`
	Label             string          `json:"label"`
	Kind              Kind            `json:"kind"`
	MemberIDs         []string        `json:"member_ids"`
	DominantSentiment sentiment.Label `json:"dominant_sentiment"`
	DominantSector    string          `json:"dominant_sector"`
	Score             float64         `json:"score"`
	Keywords          []string        `json:"keywords,omitempty"`
}

// Size returns the number of member articles
func (d Driver) Size() int {
	return len(d.MemberIDs)
}
