package game

import "testing"

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CaptureTime = 10
	cfg.MaxControlPoints = 100
	return cfg
}

func TestAdvanceCapture_AccruesForChallenger(t *testing.T) {
	cfg := testConfig()
	terr := NewTerritory("t1", Vector3{}, TerritorySupply)
	terr.InfluenceZones = []InfluenceZone{{Owner: "A", Strength: 1}}

	for i := 1; i < cfg.CaptureTime; i++ {
		if ev := AdvanceCapture(terr, cfg); ev != nil {
			t.Fatalf("Expected no capture at tick %d", i)
		}
		if terr.CaptureProgress != i {
			t.Errorf("Expected progress %d, got %d", i, terr.CaptureProgress)
		}
	}

	ev := AdvanceCapture(terr, cfg)
	if ev == nil {
		t.Fatal("Expected capture on the final tick")
	}
	if ev.TerritoryID != "t1" || ev.NewOwner != "A" || ev.TerritoryType != TerritorySupply {
		t.Errorf("Unexpected capture event: %+v", ev)
	}
	if terr.Owner != "A" {
		t.Errorf("Expected owner A, got %q", terr.Owner)
	}
	if terr.CaptureProgress != 0 {
		t.Errorf("Expected progress reset to 0, got %d", terr.CaptureProgress)
	}
	if terr.ControlPoints != cfg.MaxControlPoints {
		t.Errorf("Expected %d control points, got %d", cfg.MaxControlPoints, terr.ControlPoints)
	}
}

func TestAdvanceCapture_DecaysWhenOwnerDominates(t *testing.T) {
	cfg := testConfig()
	terr := NewTerritory("t1", Vector3{}, TerritorySupply)
	terr.Owner = "A"
	terr.CaptureProgress = 3
	terr.InfluenceZones = []InfluenceZone{{Owner: "A", Strength: 4}, {Owner: "B", Strength: 1}}

	AdvanceCapture(terr, cfg)
	if terr.CaptureProgress != 2 {
		t.Errorf("Expected progress 2, got %d", terr.CaptureProgress)
	}
	if terr.Owner != "A" {
		t.Errorf("Expected owner to remain A, got %q", terr.Owner)
	}
}

func TestAdvanceCapture_NeverNegative(t *testing.T) {
	cfg := testConfig()
	terr := NewTerritory("t1", Vector3{}, TerritorySupply)
	for i := 0; i < 5; i++ {
		AdvanceCapture(terr, cfg)
	}
	if terr.CaptureProgress != 0 {
		t.Errorf("Expected progress to stay at 0, got %d", terr.CaptureProgress)
	}
}

func TestAdvanceCapture_TieDecays(t *testing.T) {
	cfg := testConfig()
	terr := NewTerritory("t1", Vector3{}, TerritorySupply)
	terr.Owner = "C"
	terr.CaptureProgress = 4
	terr.InfluenceZones = []InfluenceZone{{Owner: "A", Strength: 2}, {Owner: "B", Strength: 2}}

	AdvanceCapture(terr, cfg)
	if terr.CaptureProgress != 3 {
		t.Errorf("Expected progress 3 after a tie, got %d", terr.CaptureProgress)
	}
}

func TestCaptureStateOf(t *testing.T) {
	terr := NewTerritory("t1", Vector3{}, TerritoryStrategic)
	if s := CaptureStateOf(terr); s != CaptureUncontested {
		t.Errorf("Expected uncontested, got %s", s)
	}

	terr.InfluenceZones = []InfluenceZone{{Owner: "A", Strength: 1}}
	if s := CaptureStateOf(terr); s != CaptureChallenged {
		t.Errorf("Expected challenged, got %s", s)
	}

	terr.Owner = "A"
	if s := CaptureStateOf(terr); s != CaptureHeld {
		t.Errorf("Expected held, got %s", s)
	}
}
