package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		xp        int
		name      string
		current   int
		span      int
		remaining int
	}{
		{0, "iniciante", 0, 1000, 1000},
		{999, "iniciante", 999, 1000, 1},
		{1000, "explorador", 0, 2000, 2000},
		{2500, "explorador", 1500, 2000, 500},
		{3000, "especialista", 0, 4000, 4000},
		{14999, "mestre", 7999, 8000, 1},
		{15000, "quantum_guardian", 0, 1, 0},
		{20000, "quantum_guardian", 5000, 5000, 0},
		{-5, "iniciante", 0, 1000, 1000},
	}

	for _, tt := range tests {
		s := Compute(tt.xp)
		assert.Equal(t, tt.name, s.Level.Name, "xp=%d", tt.xp)
		assert.Equal(t, tt.current, s.CurrentXP, "xp=%d", tt.xp)
		assert.Equal(t, tt.span, s.Span, "xp=%d", tt.xp)
		assert.Equal(t, tt.remaining, s.Remaining, "xp=%d", tt.xp)
	}
}

func TestProgress(t *testing.T) {
	assert.InDelta(t, 0.75, Compute(2500).Progress(), 1e-9)
	assert.InDelta(t, 1.0, Compute(20000).Progress(), 1e-9)
	assert.Zero(t, Stats{}.Progress())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Quantum Guardian", DisplayName("quantum_guardian"))
	assert.Equal(t, "Mestre", DisplayName("mestre"))
	assert.Equal(t, "desconhecido", DisplayName("desconhecido"))
}
