package pipeline

import (
	"strings"

	"bionews/internal/model"
)

// categoryRule maps one keyword to a category. Rules are checked in order
// against the lower-cased title+body and the first hit wins, so the order
// below is part of the contract.
type categoryRule struct {
	keyword  string
	category string
}

var categoryRules = []categoryRule{
	{"fda approval", model.CategoryDrugModalities},
	{"breakthrough therapy", model.CategoryDrugModalities},
	{"phase iii", model.CategoryClinicalTrials},
	{"phase ii", model.CategoryClinicalTrials},
	{"phase i", model.CategoryClinicalTrials},
	{"clinical trial", model.CategoryClinicalTrials},
	{"gene therapy", model.CategoryDrugModalities},
	{"car-t", model.CategoryDrugModalities},
	{"monoclonal antibody", model.CategoryDrugModalities},
	{"crispr", model.CategoryEarlyDiscovery},
	{"drug discovery", model.CategoryEarlyDiscovery},
	{"preclinical", model.CategoryEarlyDiscovery},
	{"biosimilar", model.CategoryHealthcarePolicy},
	{"reimbursement", model.CategoryHealthcarePolicy},
	{"merger", model.CategoryIndustryUpdates},
	{"acquisition", model.CategoryIndustryUpdates},
	{"partnership", model.CategoryIndustryUpdates},
	{"peer-reviewed", model.CategoryAcademicResearch},
	{"preprint", model.CategoryAcademicResearch},
}

// fallbackGroups are broader keyword groups consulted only when no rule
// matched, again in order.
var fallbackGroups = []struct {
	keywords []string
	category string
}{
	{[]string{"clinical", "trial", "patient", "treatment"}, model.CategoryClinicalTrials},
	{[]string{"discovery", "compound", "molecule"}, model.CategoryEarlyDiscovery},
	{[]string{"fda", "approval", "drug", "therapy"}, model.CategoryDrugModalities},
	{[]string{"policy", "regulation", "healthcare"}, model.CategoryHealthcarePolicy},
	{[]string{"research", "study", "university"}, model.CategoryAcademicResearch},
}

// Categorize assigns one of the fixed categories to an item. A valid
// explicit hint from the source adapter overrides the heuristic entirely.
func Categorize(hint, title, body string) string {
	if hint != "" && model.ValidCategory(hint) {
		return hint
	}

	text := strings.ToLower(title + " " + body)

	for _, rule := range categoryRules {
		if strings.Contains(text, rule.keyword) {
			return rule.category
		}
	}

	for _, group := range fallbackGroups {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.category
			}
		}
	}

	return model.CategoryIndustryUpdates
}
