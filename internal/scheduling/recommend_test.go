package scheduling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

func plumbingRequest(urgency domain.Urgency) *domain.Request {
	return &domain.Request{
		ID:          "req-1",
		Code:        "MAPLE-101-0001",
		Title:       "Leaking pipe in kitchen",
		Description: "water pooling under the sink",
		Urgency:     urgency,
		Status:      domain.RequestStatusSubmitted,
	}
}

func TestScoreForRequestInactiveWorker(t *testing.T) {
	w := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	w.Active = false
	assert.Equal(t, 0, ScoreForRequest(w, plumbingRequest(domain.UrgencyNormal)))
}

func TestScoreExactBeatsGeneralist(t *testing.T) {
	request := plumbingRequest(domain.UrgencyNormal)
	plumber := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	generalist := domain.NewWorker("Gene", "gene@example.com", "", domain.SpecializationGeneralMaintenance)

	assert.Greater(t, ScoreForRequest(plumber, request), ScoreForRequest(generalist, request))
}

func TestCanBeAssigned(t *testing.T) {
	request := plumbingRequest(domain.UrgencyNormal)
	plumber := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	painter := domain.NewWorker("Pia", "pia@example.com", "", domain.SpecializationPainting)

	assert.True(t, CanBeAssigned(plumber, request))
	assert.False(t, CanBeAssigned(painter, request))

	request.Status = domain.RequestStatusFailed
	assert.True(t, CanBeAssigned(plumber, request))

	request.Status = domain.RequestStatusDraft
	assert.False(t, CanBeAssigned(plumber, request))
}

func TestCanBeAssignedOverloaded(t *testing.T) {
	request := plumbingRequest(domain.UrgencyNormal)
	w := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	for day := 1; day <= overloadThreshold+1; day++ {
		date := time.Now().AddDate(0, 0, day)
		at := time.Date(date.Year(), date.Month(), date.Day(), 9, 0, 0, 0, date.Location())
		require.NoError(t, w.Assign(fmt.Sprintf("WO-%d", day), at, ""))
	}
	assert.False(t, CanBeAssigned(w, request))
}

func TestConfidenceBands(t *testing.T) {
	plumber := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	generalist := domain.NewWorker("Gene", "gene@example.com", "", domain.SpecializationGeneralMaintenance)
	painter := domain.NewWorker("Pia", "pia@example.com", "", domain.SpecializationPainting)

	normal := plumbingRequest(domain.UrgencyNormal)
	emergency := plumbingRequest(domain.UrgencyEmergency)

	// Exact match with a free calendar tomorrow.
	assert.InDelta(t, 0.85, Confidence(plumber, normal), 0.001)
	assert.InDelta(t, 0.95, Confidence(plumber, emergency), 0.001)

	assert.InDelta(t, 0.70, Confidence(generalist, normal), 0.001)
	assert.InDelta(t, 0.75, Confidence(generalist, emergency), 0.001)

	assert.Zero(t, Confidence(painter, normal))
}

func TestReasoningMentionsMatchFactors(t *testing.T) {
	plumber := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	reasoning := Reasoning(plumber, plumbingRequest(domain.UrgencyNormal))
	assert.Contains(t, reasoning, "exact Plumbing specialization")
	assert.Contains(t, reasoning, "light current workload")

	plumber.Active = false
	assert.Equal(t, "worker is inactive", Reasoning(plumber, plumbingRequest(domain.UrgencyNormal)))
}

func TestRecommendRanksAndTruncates(t *testing.T) {
	request := plumbingRequest(domain.UrgencyNormal)
	candidates := []*domain.Worker{
		domain.NewWorker("Gene", "gene@example.com", "", domain.SpecializationGeneralMaintenance),
		domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing),
		domain.NewWorker("Pro", "pro@example.com", "", domain.SpecializationPlumbing),
		domain.NewWorker("Pia", "pia@example.com", "", domain.SpecializationPainting),
	}
	inactive := domain.NewWorker("Idle", "idle@example.com", "", domain.SpecializationPlumbing)
	inactive.Active = false
	candidates = append(candidates, inactive)

	recs := Recommend(request, candidates, 2)
	require.Len(t, recs, 2)
	// Both plumbers outrank the generalist; the painter and the inactive
	// worker are filtered out entirely.
	assert.Equal(t, domain.SpecializationPlumbing, recs[0].Specialization)
	assert.Equal(t, domain.SpecializationPlumbing, recs[1].Specialization)
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)

	all := Recommend(request, candidates, 10)
	assert.Len(t, all, 3)
}

// Two equally scored plumbers: the one whose calendar frees up sooner wins.
func TestRecommendTieBreakPrefersSoonerAvailability(t *testing.T) {
	request := plumbingRequest(domain.UrgencyNormal)
	soon := domain.NewWorker("Sam", "sam@example.com", "", domain.SpecializationPlumbing)
	require.NoError(t, soon.Assign("WO-S", execDay(2, 9), ""))
	late := domain.NewWorker("Lee", "lee@example.com", "", domain.SpecializationPlumbing)
	require.NoError(t, late.Assign("WO-L", execDay(1, 9), ""))

	recs := Recommend(request, []*domain.Worker{late, soon}, 3)
	require.Len(t, recs, 2)
	assert.Equal(t, recs[0].Score, recs[1].Score)
	assert.Equal(t, "sam@example.com", recs[0].WorkerEmail)
}
