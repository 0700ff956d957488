package logsource_test

import (
	"testing"

	"github.com/insforge/core/internal/logsource"
	"github.com/stretchr/testify/assert"
)

func TestRoundTripOnKnownNames(t *testing.T) {
	r := logsource.New(nil)
	assert.Equal(t, "insforge.audit", r.ToDisplay("security_events"))
	assert.Equal(t, "security_events", r.ToInternal(r.ToDisplay("security_events")))
}

func TestIdentityOnUnknownInput(t *testing.T) {
	r := logsource.New(nil)
	assert.Equal(t, "unknown.stream", r.ToDisplay("unknown.stream"))
	assert.Equal(t, "unknown.display", r.ToInternal("unknown.display"))
}

func TestCustomSources(t *testing.T) {
	r := logsource.New([]logsource.Source{{InternalName: "x", DisplayName: "y"}})
	assert.Equal(t, "y", r.ToDisplay("x"))
	assert.Equal(t, "x", r.ToInternal("y"))
}
