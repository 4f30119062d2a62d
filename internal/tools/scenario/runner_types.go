package scenario

import (
	"time"

	"github.com/louisbranch/business-network/internal/services/membership/domain/membership"
)

const (
	stepNetwork      = "network"
	stepExpectStatus = "expect_status"

	// expectAccepted is the expect value of an admitted transition.
	expectAccepted = "accepted"
	// statusRevoked is the expect_status value of a membership with no state.
	statusRevoked = "revoked"

	defaultNetworkID = "network"
)

var scenarioEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type scenarioState struct {
	networkID string
	operator  membership.Party
	// memberships maps subject parties to their membership ids.
	memberships map[membership.Party]string
	clock       time.Time
}

// tick advances the scenario clock so every step gets a later modified time.
func (s *scenarioState) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}
