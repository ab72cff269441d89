package models

import (
	"time"

	"github.com/google/uuid"
)

// Feature tags the closed set of metered capabilities. Image-shaped features
// (generation, image-to-prompt, landing pages, try-on) all meter "image";
// video-shaped features meter "video".
type Feature string

const (
	FeatureImage Feature = "image"
	FeatureVideo Feature = "video"
)

// ValidFeature reports whether f belongs to the closed feature set.
func ValidFeature(f Feature) bool {
	return f == FeatureImage || f == FeatureVideo
}

// UsageCounter is one row of the free-tier ledger: how many times an account
// used a feature on a given calendar day (UTC). Rows are keyed by
// (account_id, feature, usage_date) with a unique constraint.
type UsageCounter struct {
	AccountID uuid.UUID `json:"account_id"`
	Feature   Feature   `json:"feature"`
	UsageDate time.Time `json:"usage_date"`
	Count     int       `json:"count"`
}
