package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const trialsBaseURL = "https://clinicaltrials.gov/api/v2/studies"

// TrialsSource queries the ClinicalTrials.gov registry with one fixed
// disjunctive search expression. Every entry carries an explicit Clinical
// Trials category hint.
type TrialsSource struct {
	expression string
	client     *http.Client
}

func NewTrialsSource(expression string) *TrialsSource {
	return &TrialsSource{
		expression: expression,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

func (s *TrialsSource) Name() string {
	return "ClinicalTrials.gov"
}

func (s *TrialsSource) Fetch(ctx context.Context, limit int) ([]RawItem, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query.term", s.expression)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("sort", "LastUpdatePostDate:desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trialsBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("trials request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trials fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trials fetch returned %s", resp.Status)
	}

	var raw trialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("trials decode: %w", err)
	}

	items := make([]RawItem, 0, len(raw.Studies))
	for _, study := range raw.Studies {
		p := study.ProtocolSection
		if p.Identification.BriefTitle == "" || p.Identification.NCTID == "" {
			continue
		}

		items = append(items, RawItem{
			Title:        p.Identification.BriefTitle,
			Content:      buildTrialBody(p),
			CategoryHint: "Clinical Trials",
			Source:       "ClinicalTrials.gov",
			URL:          "https://clinicaltrials.gov/study/" + p.Identification.NCTID,
			PublishedAt:  parseTrialDate(p.Status.StartDate.Date),
		})
	}
	return items, nil
}

// buildTrialBody assembles a readable body from the structured registry
// fields, since trial records have no prose content of their own.
func buildTrialBody(p trialProtocol) string {
	var parts []string
	if len(p.Conditions.Conditions) > 0 {
		parts = append(parts, "Condition: "+strings.Join(p.Conditions.Conditions, ", "))
	}
	if len(p.Arms.Interventions) > 0 {
		names := make([]string, 0, len(p.Arms.Interventions))
		for _, iv := range p.Arms.Interventions {
			if iv.Name != "" {
				names = append(names, iv.Name)
			}
		}
		if len(names) > 0 {
			parts = append(parts, "Intervention: "+strings.Join(names, ", "))
		}
	}
	if p.Sponsor.LeadSponsor.Name != "" {
		parts = append(parts, "Sponsor: "+p.Sponsor.LeadSponsor.Name)
	}
	if len(parts) == 0 {
		return p.Identification.BriefTitle
	}
	return strings.Join(parts, ". ") + "."
}

// parseTrialDate handles the registry's full and month-precision dates.
func parseTrialDate(value string) time.Time {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return ParseOrDefaultNow("2006-01", value)
}

type trialsResponse struct {
	Studies []struct {
		ProtocolSection trialProtocol `json:"protocolSection"`
	} `json:"studies"`
}

type trialProtocol struct {
	Identification struct {
		NCTID      string `json:"nctId"`
		BriefTitle string `json:"briefTitle"`
	} `json:"identificationModule"`
	Status struct {
		StartDate struct {
			Date string `json:"date"`
		} `json:"startDateStruct"`
	} `json:"statusModule"`
	Conditions struct {
		Conditions []string `json:"conditions"`
	} `json:"conditionsModule"`
	Arms struct {
		Interventions []struct {
			Name string `json:"name"`
		} `json:"interventions"`
	} `json:"armsInterventionsModule"`
	Sponsor struct {
		LeadSponsor struct {
			Name string `json:"name"`
		} `json:"leadSponsor"`
	} `json:"sponsorCollaboratorsModule"`
}
