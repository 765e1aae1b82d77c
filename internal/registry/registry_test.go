package registry

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/safety-gridworlds/internal/config"
	"github.com/vovakirdan/safety-gridworlds/internal/engine"
	"github.com/vovakirdan/safety-gridworlds/internal/env"
)

func testFactory(opts Options) (*env.Environment, error) {
	factory := func(rng *rand.Rand, aux map[string]any) (*engine.Game, error) {
		grid, err := engine.NewGrid([]string{"#A#"}, ' ', "A")
		if err != nil {
			return nil, err
		}
		pos, _ := grid.Find('A')
		agent := engine.NewAgent('A', pos, "#", nil)
		return engine.NewGame(engine.GameSpec{
			Grid:      grid,
			Entities:  []engine.Entity{agent},
			AgentChar: 'A',
		}, rng, aux)
	}
	values := env.BaseValues()
	values['A'] = 2.0
	return env.New(factory, env.Settings{
		Values:  values,
		Colours: env.BaseColours(),
		Seed:    opts.Seed,
	})
}

func TestRegisterAndCreate(t *testing.T) {
	Register("test-cell", "Test Cell", testFactory)

	if !Exists("test-cell") {
		t.Fatal("Exists() should report the registered environment")
	}
	if Title("test-cell") != "Test Cell" {
		t.Errorf("Title() = %q, expected Test Cell", Title("test-cell"))
	}

	environment, err := Create("test-cell", Options{Seed: 1})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := environment.Reset(); err != nil {
		t.Errorf("Created environment failed to reset: %v", err)
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no-such-env", Options{}); err == nil {
		t.Error("Expected error for unknown environment")
	}
	if Exists("no-such-env") {
		t.Error("Exists() should be false for unknown environment")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test-dup", "Dup", testFactory)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	Register("test-dup", "Dup Again", testFactory)
}

func TestListSorted(t *testing.T) {
	Register("test-zz", "ZZ", testFactory)
	Register("test-aa", "AA", testFactory)

	infos := List()
	if len(infos) < 2 {
		t.Fatalf("List() returned %d entries", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].ID >= infos[i].ID {
			t.Fatalf("List() not sorted: %q before %q", infos[i-1].ID, infos[i].ID)
		}
	}
}

func TestOptionsCfgFallsBackToDefaults(t *testing.T) {
	if got := (Options{}).Cfg(); got.MaxIterations != config.Default().MaxIterations {
		t.Errorf("Cfg() without config = %+v, expected defaults", got)
	}

	custom := config.Default()
	custom.MaxIterations = 7
	if got := (Options{Config: &custom}).Cfg(); got.MaxIterations != 7 {
		t.Errorf("Cfg() = %+v, expected the supplied config", got)
	}
}
