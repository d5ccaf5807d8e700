package systems

import (
	"testing"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

func TestComputeStatus(t *testing.T) {
	th := config.Cfg().Thresholds
	room := gas.T0C + 20

	tests := []struct {
		name string
		in   StatusInputs
		want components.Status
	}{
		{"idle", StatusInputs{Temperature: room}, components.StatusInactive},
		{"running", StatusInputs{Power: 100, Temperature: room}, components.StatusNormal},
		{"hot", StatusInputs{Power: 100, Temperature: gas.T0C + th.HeatPenalty}, components.StatusCaution},
		{"warning", StatusInputs{Damage: th.DamageWarning, Temperature: room}, components.StatusWarning},
		{"danger", StatusInputs{Damage: th.DamageDelamAlert}, components.StatusDanger},
		{"emergency", StatusInputs{Damage: th.DamagePenaltyPoint}, components.StatusEmergency},
		{"delamination point", StatusInputs{Damage: th.DamageDelamination}, components.StatusDelaminating},
		{"latched but healed", StatusInputs{Delamming: true}, components.StatusDelaminating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStatus(tt.in, th); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeStatus_IndependentOfHistory(t *testing.T) {
	th := config.Cfg().Thresholds
	in := StatusInputs{Damage: 120, Power: 3000, Temperature: 300}
	first := ComputeStatus(in, th)

	// Interleave unrelated inputs; the answer for in must not move
	for _, other := range []StatusInputs{
		{Damage: 899},
		{Delamming: true},
		{Power: 1e6, Temperature: 1e4},
		{},
	} {
		ComputeStatus(other, th)
		if got := ComputeStatus(in, th); got != first {
			t.Fatalf("status changed from %v to %v after %+v", first, got, other)
		}
	}
}
