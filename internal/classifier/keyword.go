package classifier

import (
	"context"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// KeywordClassifier is the built-in deterministic classifier. It scores
// departments by keyword hits and labels the issues it recognizes. It is the
// default when no external perception endpoint is configured.
type KeywordClassifier struct{}

// NewKeywordClassifier constructs the classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

type issueRule struct {
	department domain.Department
	issue      string
	keywords   []string
}

var issueRules = []issueRule{
	{domain.DepartmentElectricity, "streetlight_outage", []string{"streetlight", "street light", "lamp post", "lamppost"}},
	{domain.DepartmentElectricity, "power_outage", []string{"power cut", "power outage", "no electricity", "blackout"}},
	{domain.DepartmentElectricity, "exposed_wiring", []string{"exposed wire", "hanging wire", "sparking", "transformer"}},
	{domain.DepartmentRoads, "pothole", []string{"pothole", "pot hole"}},
	{domain.DepartmentRoads, "road_damage", []string{"road damage", "broken road", "cracked road", "asphalt"}},
	{domain.DepartmentRoads, "signal_fault", []string{"traffic signal", "traffic light"}},
	{domain.DepartmentWater, "water_leak", []string{"water leak", "leaking pipe", "leakage"}},
	{domain.DepartmentWater, "pipeline_burst", []string{"burst pipe", "pipeline burst", "pipe burst"}},
	{domain.DepartmentWater, "no_water_supply", []string{"no water", "water supply"}},
	{domain.DepartmentWater, "drainage_blockage", []string{"drain", "drainage", "sewage"}},
	{domain.DepartmentSanitation, "garbage_overflow", []string{"garbage", "trash", "waste", "litter"}},
	{domain.DepartmentSanitation, "dead_animal", []string{"dead animal", "carcass"}},
	{domain.DepartmentSanitation, "public_toilet", []string{"public toilet", "restroom"}},
}

var criticalKeywords = []string{"fire", "electrocut", "accident", "collapsed", "flood", "burst", "danger"}

var highKeywords = []string{"sparking", "exposed wire", "main road", "overflowing", "sewage", "urgent", "blackout"}

// Classify scores the description against the rule table. Zero matches yield
// an empty issue set with the General department; the orchestrator handles
// the fallback task.
func (c *KeywordClassifier) Classify(_ context.Context, description string) (Result, error) {
	trimmed, err := ValidateDescription(description)
	if err != nil {
		return Result{}, err
	}
	text := strings.ToLower(trimmed)

	hits := map[domain.Department]int{}
	issuesByDept := map[domain.Department][]string{}
	for _, rule := range issueRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				hits[rule.department]++
				issuesByDept[rule.department] = appendUnique(issuesByDept[rule.department], rule.issue)
				break
			}
		}
	}

	best := domain.DepartmentGeneral
	bestHits := 0
	for _, dept := range domain.Departments() {
		if hits[dept] > bestHits {
			best = dept
			bestHits = hits[dept]
		}
	}

	return Result{
		Department: best,
		Priority:   scorePriority(text, bestHits),
		Issues:     issuesByDept[best],
	}, nil
}

func scorePriority(text string, hits int) domain.TaskPriority {
	for _, kw := range criticalKeywords {
		if strings.Contains(text, kw) {
			return domain.TaskPriorityCritical
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(text, kw) {
			return domain.TaskPriorityHigh
		}
	}
	if hits > 1 {
		return domain.TaskPriorityHigh
	}
	return domain.TaskPriorityMedium
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
