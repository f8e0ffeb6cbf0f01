package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/speculator/speculator/domain"
)

func Test_Ledger_KeepsFirstReason(t *testing.T) {
	l := newLedger()
	l.Add(mapTask("j", 2), domain.SlowMapPath)
	l.Add(mapTask("j", 1), domain.DefaultHeuristic)
	l.Add(mapTask("j", 2), domain.SlowFetchRate)

	assert.True(t, l.Contains(mapTask("j", 2)))
	assert.False(t, l.Contains(mapTask("j", 3)))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []LedgerEntry{
		{Task: mapTask("j", 1), Reason: domain.DefaultHeuristic},
		{Task: mapTask("j", 2), Reason: domain.SlowMapPath},
	}, l.Snapshot())

	data, err := json.Marshal(l.Snapshot()[1])
	assert.NoError(t, err)
	assert.JSONEq(t, `{"task": {"job": "j", "type": "map", "index": 2}, "reason": "slow_map_path"}`, string(data))
}

func Test_ContainerNeeds(t *testing.T) {
	c := newContainerNeeds()
	c.register("b")
	c.add("a", 2)
	c.add("a", -1)

	assert.Equal(t, int64(1), needOf(c, "a"))
	assert.Equal(t, int64(0), needOf(c, "b"))
	assert.Equal(t, int64(0), needOf(c, "missing"))
	assert.Equal(t, []jobNeed{{job: "a", need: 1}, {job: "b", need: 0}}, c.snapshot())
}

func needOf(c *containerNeeds, job domain.JobID) int64 {
	for _, n := range c.snapshot() {
		if n.job == job {
			return n.need
		}
	}
	return 0
}
