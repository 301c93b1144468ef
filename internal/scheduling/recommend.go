package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

const (
	baseScore            = 100
	exactMatchBonus      = 200
	coverageBonus        = 100
	tomorrowBonus        = 50
	emergencyBonus       = 30
	workloadBonusCeiling = 100

	// overloadThreshold is the number of concurrently active assignments
	// beyond which a worker is excluded from recommendations.
	overloadThreshold = 5

	workloadWindowDays = 7
)

// Recommendation packages a candidate worker with its suitability verdict.
type Recommendation struct {
	WorkerID            string
	WorkerName          string
	WorkerEmail         string
	Specialization      domain.Specialization
	Score               int
	Confidence          float64
	Reasoning           string
	EstimatedCompletion time.Time
}

// ScoreForRequest computes the suitability score of a worker for a request.
// Inactive workers always score zero.
func ScoreForRequest(worker *domain.Worker, request *domain.Request) int {
	if !worker.Active {
		return 0
	}
	required := domain.InferRequiredSpecialization(request.Title, request.Description)

	score := baseScore
	if worker.Specialization == required {
		score += exactMatchBonus
	} else if worker.Specialization.Covers(required) {
		score += coverageBonus
	}
	if worker.IsAvailableOn(tomorrow()) {
		score += tomorrowBonus
	}
	load := worker.UpcomingWorkload(time.Now(), workloadWindowDays)
	if bonus := workloadBonusCeiling - load*20; bonus > 0 {
		score += bonus
	}
	if request.Urgency.IsEmergency() && emergencyCapable(worker) {
		score += emergencyBonus
	}
	return score
}

// CanBeAssigned reports whether a worker is eligible at all: active, covering
// the inferred specialization, the request in an assignable status, and the
// worker not overloaded.
func CanBeAssigned(worker *domain.Worker, request *domain.Request) bool {
	if !worker.Active {
		return false
	}
	if !IsAssignableStatus(request.Status) {
		return false
	}
	required := domain.InferRequiredSpecialization(request.Title, request.Description)
	if !worker.Specialization.Covers(required) {
		return false
	}
	return worker.ActiveAssignmentCount() <= overloadThreshold
}

// Confidence scores how certain the engine is about the fit, in [0, 1].
// Emergency requests run hotter: fast assignment beats perfect fit.
func Confidence(worker *domain.Worker, request *domain.Request) float64 {
	if !worker.Active {
		return 0
	}
	required := domain.InferRequiredSpecialization(request.Title, request.Description)
	if !worker.Specialization.Covers(required) {
		return 0
	}
	if worker.Specialization == required {
		confidence := 0.80
		if request.Urgency.IsEmergency() {
			confidence += 0.10
		}
		if worker.IsAvailableOn(tomorrow()) {
			confidence += 0.05
		}
		if confidence > 0.95 {
			confidence = 0.95
		}
		return confidence
	}
	confidence := 0.70
	if request.Urgency.IsEmergency() {
		confidence += 0.05
	}
	return confidence
}

// Reasoning renders the human-readable factors behind a recommendation. It is
// display-only and never feeds back into decision logic.
func Reasoning(worker *domain.Worker, request *domain.Request) string {
	if !worker.Active {
		return "worker is inactive"
	}
	required := domain.InferRequiredSpecialization(request.Title, request.Description)
	var parts []string
	if worker.Specialization == required {
		parts = append(parts, fmt.Sprintf("has exact %s specialization", required))
	} else if worker.Specialization.Covers(required) {
		parts = append(parts, fmt.Sprintf("can handle %s work as %s", required, worker.Specialization))
	}
	if worker.IsAvailableOn(tomorrow()) {
		parts = append(parts, "available for immediate assignment")
	}
	if request.Urgency.IsEmergency() && emergencyCapable(worker) {
		parts = append(parts, "qualified for emergency requests")
	}
	if worker.UpcomingWorkload(time.Now(), workloadWindowDays) <= 2 {
		parts = append(parts, "light current workload")
	}
	if len(parts) == 0 {
		return "no specific match factors"
	}
	return strings.Join(parts, "; ")
}

// EstimatedCompletion projects when the worker could finish the job: the next
// fully available day plus one nominal work window.
func EstimatedCompletion(worker *domain.Worker) time.Time {
	if next, ok := worker.NextFullyAvailableDate(time.Now(), domain.DefaultSearchHorizonDays); ok {
		return next.Add(domain.AssignmentWindow)
	}
	return time.Now().AddDate(0, 0, domain.DefaultSearchHorizonDays)
}

// Recommend filters, scores, and ranks candidates for a request, returning at
// most topN recommendations in descending score order. Equal scores break on
// the workers' calendar ranking: sooner fully-available wins.
func Recommend(request *domain.Request, candidates []*domain.Worker, topN int) []Recommendation {
	if topN <= 0 {
		topN = 3
	}
	type candidate struct {
		rec  Recommendation
		rank int
	}
	var pool []candidate
	for _, worker := range candidates {
		if !CanBeAssigned(worker, request) {
			continue
		}
		pool = append(pool, candidate{
			rec: Recommendation{
				WorkerID:            worker.ID,
				WorkerName:          worker.Name,
				WorkerEmail:         worker.Email,
				Specialization:      worker.Specialization,
				Score:               ScoreForRequest(worker, request),
				Confidence:          Confidence(worker, request),
				Reasoning:           Reasoning(worker, request),
				EstimatedCompletion: EstimatedCompletion(worker),
			},
			rank: worker.RankingScore(tomorrow()),
		})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].rec.Score != pool[j].rec.Score {
			return pool[i].rec.Score > pool[j].rec.Score
		}
		return pool[i].rank < pool[j].rank
	})
	if len(pool) > topN {
		pool = pool[:topN]
	}
	var recs []Recommendation
	for _, c := range pool {
		recs = append(recs, c.rec)
	}
	return recs
}

// emergencyCapable reports whether the worker could take emergency work in
// the next two days under the relaxed capacity rules.
func emergencyCapable(worker *domain.Worker) bool {
	if !worker.Active {
		return false
	}
	return worker.AvailabilityScore(time.Now(), true) > 0 ||
		worker.AvailabilityScore(tomorrow(), true) > 0
}

func tomorrow() time.Time {
	return time.Now().AddDate(0, 0, 1)
}
