package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

const contentRoot = "../../../content"

func loadContent(t testing.TB) *sim.Content {
	t.Helper()
	c, err := sim.LoadContent(sim.DefaultContentDirs(contentRoot))
	require.NoError(t, err)
	return c
}

type worldOpt func(*sim.Options)

func withoutScripts() worldOpt { return func(o *sim.Options) { o.Scripts = nil } }

func nonAuthoritative() worldOpt { return func(o *sim.Options) { o.Config.Authoritative = false } }

func withSpawns(sp ...npc.SpawnPoint) worldOpt {
	return func(o *sim.Options) {
		c := *o.Content
		c.Spawns = sp
		o.Content = &c
	}
}

func newWorld(t testing.TB, opts ...worldOpt) (*sim.World, *sim.Content) {
	t.Helper()
	content := loadContent(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(42), zap.NewNop())
	scripts := scripting.NewManager(roller, zap.NewNop())
	require.NoError(t, scripts.Load(contentRoot+"/scripts", 0))
	t.Cleanup(scripts.Close)

	cfg := sim.DefaultConfig()
	cfg.CorpseLinger = time.Second
	o := sim.Options{
		Config:   cfg,
		Damage:   combat.DefaultTuning(),
		Combo:    ability.DefaultTuning(),
		HitReact: hitreact.DefaultTuning(),
		Content:  content,
		Roller:   roller,
		Scripts:  scripts,
		Logger:   zap.NewNop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	w, err := sim.NewWorld(o)
	require.NoError(t, err)
	return w, o.Content
}

func spawnAt(t testing.TB, w *sim.World, tmpl *npc.Template, group string, at geom.Vec3) *sim.Entity {
	t.Helper()
	require.NoError(t, w.Spawn(tmpl, npc.SpawnPoint{Group: group, TemplateID: tmpl.ID, Max: 10, Home: at}))
	es := w.Entities()
	return es[len(es)-1]
}

func swordStrike(attacker string) ability.Strike {
	return ability.Strike{
		Attacker:   attacker,
		Ability:    "sword_combo",
		Tag:        "combo.1",
		PowerScale: 1,
		Kind:       combat.Physical,
		Reach:      220,
		Arc:        100,
		Reaction:   hitreact.TagNormal,
	}
}
