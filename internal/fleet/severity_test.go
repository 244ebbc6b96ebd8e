package fleet

import "testing"

func TestClassifySeverity(t *testing.T) {
	cases := []struct {
		tag  string
		want Severity
	}{
		{"curva_brusca", SeverityCritical},
		{"punto_interes_parada", SeverityCritical},
		{"evento_critico", SeverityCritical},
		{"frenado_peligroso", SeverityDangerous},
		{"danger_zone", SeverityDangerous},
		{"HIGH_G", SeverityDangerous},
		{"giro_moderado", SeverityModerate},
		{"warning_lateral", SeverityModerate},
		{"parada_normal", SeverityLight},
		{"", SeverityLight},
	}

	for _, c := range cases {
		if got := ClassifySeverity(c.tag); got != c.want {
			t.Errorf("ClassifySeverity(%q): expected %s, got %s", c.tag, c.want, got)
		}
	}
}

// A tag matching both a critical and a lower keyword must classify by the
// first (critical) set; keyword order is load-bearing.
func TestClassifySeverity_OrderPrecedence(t *testing.T) {
	if got := ClassifySeverity("curva_brusca_zona"); got != SeverityCritical {
		t.Errorf("expected critical, got %s", got)
	}
	// Contains both "critico" and "moderado"; critical is checked first.
	if got := ClassifySeverity("critico_moderado"); got != SeverityCritical {
		t.Errorf("expected critical for mixed tag, got %s", got)
	}
}

func TestClassifySeverity_CaseAndAccents(t *testing.T) {
	if got := ClassifySeverity("CURVA_BRUSCA"); got != SeverityCritical {
		t.Errorf("expected case-insensitive match, got %s", got)
	}
	if got := ClassifySeverity("evento crítico"); got != SeverityCritical {
		t.Errorf("expected accented tag to match, got %s", got)
	}
	if got := ClassifySeverity("giro PELIGROSO"); got != SeverityDangerous {
		t.Errorf("expected dangerous, got %s", got)
	}
}
