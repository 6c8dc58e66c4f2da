package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildstep/internal/encounter"
)

func sureZone() encounter.ZoneConfig {
	cfg := encounter.DefaultZoneConfig()
	cfg.Name = "Sure Thing"
	cfg.BaseChance = 100
	cfg.CheckInterval = 5
	cfg.Enabled = true
	cfg.Common = []string{"slime"}
	cfg.Uncommon = nil
	cfg.Rare = nil
	cfg.MinEnemies = 1
	cfg.MaxEnemies = 1
	return cfg
}

func TestSimulate_EveryCheckHits(t *testing.T) {
	sim := newSimulation(encounter.NewSeededRNG(7))
	m := sim.newManager(1, false, false)

	res, err := sim.run(m, sureZone(), 100)
	require.NoError(t, err)

	assert.Equal(t, 20, res.Encounters)
	assert.Zero(t, res.Aborted)
	assert.Equal(t, map[string]int{"slime": 20}, res.Enemies)
	for _, gap := range res.Gaps {
		assert.Equal(t, 5, gap)
	}
	assert.InDelta(t, 5.0, res.meanGap(), 1e-9)
	assert.False(t, m.InBattle())
	assert.Nil(t, m.ActiveZone(), "zone is unregistered after the run")
}

func TestSimulate_EmptyPoolsAbort(t *testing.T) {
	cfg := sureZone()
	cfg.Common = nil

	sim := newSimulation(encounter.NewSeededRNG(7))
	res, err := sim.run(sim.newManager(1, false, false), cfg, 50)
	require.NoError(t, err)

	assert.Zero(t, res.Encounters)
	assert.Equal(t, 10, res.Aborted)
	assert.Empty(t, res.Enemies)
}

func TestSimulate_DisabledZone(t *testing.T) {
	cfg := sureZone()
	cfg.Enabled = false

	sim := newSimulation(encounter.NewSeededRNG(7))
	res, err := sim.run(sim.newManager(1, false, false), cfg, 50)
	require.NoError(t, err)
	assert.Zero(t, res.Encounters)
	assert.Zero(t, res.meanGap())
}

func TestSimulate_InvalidZone(t *testing.T) {
	cfg := sureZone()
	cfg.CheckInterval = 0

	sim := newSimulation(encounter.NewSeededRNG(7))
	_, err := sim.run(sim.newManager(1, false, false), cfg, 10)
	assert.Error(t, err)
}

func TestSimResult_Print(t *testing.T) {
	res := simResult{
		Steps:      100,
		Encounters: 3,
		Gaps:       []int{10, 20, 30},
		Enemies:    map[string]int{"slime": 3, "bat": 1},
	}
	var buf bytes.Buffer
	res.print(&buf, sureZone(), 1)

	out := buf.String()
	assert.Contains(t, out, `Zone "Sure Thing": 100 steps`)
	assert.Contains(t, out, "encounters: 3 (aborted 0)")
	assert.Contains(t, out, "20.0 observed, 5.0 expected")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("slime")), bytes.Index(buf.Bytes(), []byte("bat")))
}
