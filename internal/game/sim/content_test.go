package sim_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
)

func TestLoadContent_RepositoryContent(t *testing.T) {
	c := loadContent(t)
	assert.Contains(t, c.Templates, "knight")
	assert.Contains(t, c.Templates, "skeleton")
	assert.Contains(t, c.Templates, "wraith")
	_, ok := c.Profiles.Profile("brute")
	assert.True(t, ok)
	_, ok = c.Abilities.Get("sword_combo")
	assert.True(t, ok)
	assert.Len(t, c.Spawns, 3)
	for _, p := range []string{"brute", "skulker"} {
		prof, _ := c.Profiles.Profile(p)
		assert.LessOrEqual(t, prof.Tactical.MaxRange, prof.AttackRange, "%s holds within striking distance", p)
	}
}

func TestLoadContent_MissingDirectory(t *testing.T) {
	dirs := sim.DefaultContentDirs("../../../content")
	dirs.Clips = filepath.Join(t.TempDir(), "absent")
	_, err := sim.LoadContent(dirs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading clips")
}

func TestContentValidate_ReportsEveryDanglingReference(t *testing.T) {
	c := loadContent(t)
	broken := *c
	broken.Templates = map[string]*npc.Template{
		"ghoul": {ID: "ghoul", Name: "Ghoul", Team: "undead", Abilities: []string{"bite"}, AIProfile: "feral"},
	}
	tuning := hitreact.DefaultTuning()
	tuning.KnockdownClip = "react_flop"

	err := broken.Validate(tuning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown ability "bite"`)
	assert.Contains(t, err.Error(), `unknown ai profile "feral"`)
	assert.Contains(t, err.Error(), `unknown clip "react_flop"`)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, sim.DefaultConfig().Validate())

	cfg := sim.DefaultConfig()
	cfg.TickRate = 0
	cfg.CorpseLinger = -1
	cfg.Movement.GuardScale = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_rate")
	assert.Contains(t, err.Error(), "corpse_linger")
	assert.Contains(t, err.Error(), "guard_scale")
}

func TestConfig_Step(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.TickRate = 50
	assert.Equal(t, "20ms", cfg.Step().String())
}
