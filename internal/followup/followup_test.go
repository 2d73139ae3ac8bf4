package followup

import (
	"testing"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/profile"

	"github.com/stretchr/testify/assert"
)

func TestResolveSalary(t *testing.T) {
	analysis := &ai.FollowUpAnalysis{QuestionType: ai.QuestionSalary}

	full := &profile.UserProfile{ShareSalary: true, IdealSalary: 150000}
	assert.True(t, Resolve(analysis, full).CanAutoRespond)

	floorOnly := &profile.UserProfile{ShareSalary: true, SalaryFloor: 100000}
	assert.True(t, Resolve(analysis, floorOnly).CanAutoRespond)

	private := &profile.UserProfile{ShareSalary: false, IdealSalary: 150000}
	res := Resolve(analysis, private)
	assert.False(t, res.CanAutoRespond)
	assert.NotEmpty(t, res.ReviewReason)

	unconfigured := &profile.UserProfile{ShareSalary: true}
	res = Resolve(analysis, unconfigured)
	assert.False(t, res.CanAutoRespond)
	assert.NotEmpty(t, res.ReviewReason)
}

func TestResolveAvailability(t *testing.T) {
	analysis := &ai.FollowUpAnalysis{QuestionType: ai.QuestionAvailability}

	ready := &profile.UserProfile{AvailabilityWeeks: 4}
	assert.True(t, Resolve(analysis, ready).CanAutoRespond)

	res := Resolve(analysis, &profile.UserProfile{})
	assert.False(t, res.CanAutoRespond)
	assert.NotEmpty(t, res.ReviewReason)
}

func TestResolveOtherTypesAlwaysManual(t *testing.T) {
	// A fully configured profile still never auto-answers these.
	p := &profile.UserProfile{ShareSalary: true, IdealSalary: 150000, AvailabilityWeeks: 2}

	for _, q := range []ai.QuestionType{
		ai.QuestionExperience,
		ai.QuestionInterest,
		ai.QuestionScheduling,
		ai.QuestionNone,
		ai.QuestionOther,
	} {
		res := Resolve(&ai.FollowUpAnalysis{QuestionType: q}, p)
		assert.False(t, res.CanAutoRespond, "question=%s", q)
		assert.NotEmpty(t, res.ReviewReason, "question=%s", q)
	}
}

func TestResolveNilAnalysis(t *testing.T) {
	res := Resolve(nil, &profile.UserProfile{})
	assert.False(t, res.CanAutoRespond)
	assert.NotEmpty(t, res.ReviewReason)
}
