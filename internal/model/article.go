package model

import "time"

const (
	CategoryAcademicResearch = "Academic Research"
	CategoryIndustryUpdates  = "Industry Updates"
	CategoryEarlyDiscovery   = "Early Discovery"
	CategoryClinicalTrials   = "Clinical Trials"
	CategoryDrugModalities   = "Drug Modalities"
	CategoryHealthcarePolicy = "Healthcare & Policy"
)

// Categories is the fixed set of topics an article can be filed under,
// in display order.
var Categories = []string{
	CategoryAcademicResearch,
	CategoryIndustryUpdates,
	CategoryEarlyDiscovery,
	CategoryClinicalTrials,
	CategoryDrugModalities,
	CategoryHealthcarePolicy,
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Article is the canonical persisted news record. Records are written once
// by the ingestion pipeline and never updated afterwards, except for the
// one-time headline/summary backfill.
type Article struct {
	ID          string
	Title       string
	Headline    string
	Summary     string
	Content     string
	Category    string
	Source      string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	Keywords    []string
	CreatedAt   time.Time
}
