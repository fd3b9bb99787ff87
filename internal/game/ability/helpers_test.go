package ability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

type fakeOwner struct {
	id          string
	stats       *stats.Block
	flags       *condition.Set
	player      anim.Player
	motion      ability.Motion
	orientation ability.Orientation
}

func (o *fakeOwner) ID() string                           { return o.id }
func (o *fakeOwner) Stats() *stats.Block                  { return o.stats }
func (o *fakeOwner) Flags() *condition.Set                { return o.flags }
func (o *fakeOwner) Animator() anim.Player                { return o.player }
func (o *fakeOwner) Motion() ability.Motion               { return o.motion }
func (o *fakeOwner) SetOrientation(v ability.Orientation) { o.orientation = v }

type strikeLog struct{ strikes []ability.Strike }

func (s *strikeLog) Strike(st ability.Strike) { s.strikes = append(s.strikes, st) }

type env struct {
	clk     *clock.Manual
	tl      *anim.Timeline
	owner   *fakeOwner
	comp    *ability.Component
	strikes *strikeLog
}

func (e *env) advance(d time.Duration) {
	e.clk.Advance(d)
	e.comp.Tick()
	e.tl.Advance(d)
}

func (e *env) tagCount(tags ...string) int {
	n := 0
	for _, t := range tags {
		n += e.comp.Tags().Count(t)
	}
	return n
}

func testClips(t testing.TB) *anim.Library {
	lib := anim.NewLibrary()
	windowed := func(id string) *anim.Clip {
		return &anim.Clip{ID: id, Duration: time.Second, Events: []anim.Notify{
			{Name: anim.EventHit, At: 300 * time.Millisecond},
			{Name: anim.EventWindowOpen, At: 400 * time.Millisecond},
			{Name: anim.EventWindowClose, At: 700 * time.Millisecond},
		}}
	}
	clips := []*anim.Clip{
		windowed("c1"), windowed("c2"),
		{ID: "c3", Duration: time.Second, Events: []anim.Notify{{Name: anim.EventHit, At: 300 * time.Millisecond}}},
		{ID: "skill_x", Duration: 800 * time.Millisecond, Events: []anim.Notify{{Name: anim.EventHit, At: 400 * time.Millisecond}}},
	}
	for _, d := range []string{"f", "fr", "r", "br", "b", "bl", "l", "fl"} {
		clips = append(clips, &anim.Clip{ID: "dodge_" + d, Duration: 500 * time.Millisecond})
	}
	for _, c := range clips {
		if err := lib.Register(c); err != nil {
			t.Fatal(err)
		}
	}
	return lib
}

func hit(scale float64) ability.HitSpec {
	return ability.HitSpec{PowerScale: scale, DamageKind: "physical", Reach: 200, Arc: 90, Reaction: "hit.normal"}
}

func testCatalog(t testing.TB) *ability.Catalog {
	cat := ability.NewCatalog()
	defs := []*ability.Def{
		{
			ID: "combo", Kind: ability.KindCombo, Action: "attack",
			Tags:          []string{ability.TagAttack},
			BlockedBy:     []string{condition.Dead, condition.HitReact, condition.Dodging, condition.Guarding},
			RequiresArmed: true,
			Steps: []ability.Step{
				{Tag: "combo.1", Clip: "c1", Cost: 5, Hit: hit(1)},
				{Tag: "combo.2", Clip: "c2", Cost: 5, Hit: hit(1.2)},
				{Tag: "combo.3", Clip: "c3", Cost: 5, Hit: hit(1.5)},
			},
		},
		{
			ID: "guard", Kind: ability.KindGuard, Action: "guard",
			Tags: []string{"ability.guard"}, BlockedBy: []string{condition.Dead, condition.Dodging},
		},
		{
			ID: "roll", Kind: ability.KindDodge, Action: "dodge",
			Tags: []string{"ability.dodge"}, BlockedBy: []string{condition.Dead, condition.Dodging},
			Cancels: []string{ability.TagAttack, "ability.guard"}, FullBody: true, Cost: 15,
			ClipPrefix: "dodge_", IFrameOffset: 100 * time.Millisecond, IFrameDuration: 200 * time.Millisecond,
		},
		{
			ID: "smash", Kind: ability.KindSkill, Action: "skill",
			Tags: []string{ability.TagAttack}, BlockedBy: []string{condition.Dead, condition.Guarding},
			Cost: 20, Clip: "skill_x", Cooldown: 3 * time.Second, Hit: hit(2), SuperArmor: true,
			Precondition: "smash_ready",
		},
		{
			ID: "jab", Kind: ability.KindSkill, Action: "skill",
			Tags: []string{ability.TagAttack}, Clip: "skill_x", Hit: hit(0.5),
		},
	}
	for _, d := range defs {
		if err := cat.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	return cat
}

func flagRegistry(t testing.TB) *condition.Registry {
	reg := condition.NewRegistry()
	for _, d := range []*condition.Def{
		{ID: condition.Guarding, ExclusiveWith: []string{condition.Attacking}},
		{ID: condition.Attacking},
		{ID: condition.HitReact, RestrictActions: []string{"attack", "skill"}},
	} {
		if err := reg.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func testTuning() ability.Tuning {
	tn := ability.DefaultTuning()
	tn.AttackCooldown = 0
	return tn
}

type envOpt func(*ability.Deps)

func newEnv(t testing.TB, loadout []string, opts ...envOpt) *env {
	return newEnvWithClips(t, testClips(t), loadout, opts...)
}

func newEnvWithClips(t testing.TB, lib *anim.Library, loadout []string, opts ...envOpt) *env {
	clk := clock.NewManual(0)
	tl := anim.NewTimeline(lib, zap.NewNop())
	owner := &fakeOwner{
		id:     "hero",
		stats:  stats.NewBlock(stats.Base{MaxHP: 100, MaxSP: 100, AttackPower: 50}, 0.2),
		flags:  condition.NewSet(flagRegistry(t)),
		player: tl,
		motion: ability.Motion{Forward: geom.Forward},
	}
	strikes := &strikeLog{}
	deps := ability.Deps{
		Clock:   clk,
		Roller:  dice.NewLoggedRoller(&testutil.FixedSource{Floats: []float64{0.5}}, zap.NewNop()),
		Strikes: strikes,
		Tuning:  testTuning(),
		Logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(&deps)
	}
	comp, err := ability.NewComponent(owner, testCatalog(t), loadout, deps)
	if err != nil {
		t.Fatal(err)
	}
	comp.SetArmed(true)
	return &env{clk: clk, tl: tl, owner: owner, comp: comp, strikes: strikes}
}

func requireNoTags(t *testing.T, e *env) {
	require.Zero(t, e.tagCount(ability.TagAttack, "combo.1", "combo.2", "combo.3", "ability.guard", "ability.dodge"))
}

func depsOf(e *env) ability.Deps {
	return ability.Deps{
		Clock:  e.clk,
		Roller: dice.NewLoggedRoller(&testutil.FixedSource{}, zap.NewNop()),
		Tuning: testTuning(),
		Logger: zap.NewNop(),
	}
}

func requireNoTagsExcept(t *testing.T, e *env, keep string) {
	for _, tag := range []string{ability.TagAttack, "combo.1", "combo.2", "combo.3", "ability.guard", "ability.dodge"} {
		if tag == keep {
			continue
		}
		require.Zero(t, e.comp.Tags().Count(tag), tag)
	}
}
