package stress

import "testing"

func TestDriftSchedule_Bounds(t *testing.T) {
	d := NewDriftSchedule(0.4, 3, 11)
	const n = 500
	varied := false
	first := d.ErosionAt(0, n)
	for i := 0; i < n; i++ {
		e := d.ErosionAt(i, n)
		if e < 0 || e > 0.4 {
			t.Fatalf("ErosionAt(%d) = %.4f, want in [0, 0.4]", i, e)
		}
		if e != first {
			varied = true
		}
	}
	if !varied {
		t.Error("drift schedule is constant")
	}
}

func TestDriftSchedule_Deterministic(t *testing.T) {
	a := NewDriftSchedule(0.5, 2, 99)
	b := NewDriftSchedule(0.5, 2, 99)
	for i := 0; i < 100; i++ {
		if a.ErosionAt(i, 100) != b.ErosionAt(i, 100) {
			t.Fatalf("schedules with equal seeds differ at %d", i)
		}
	}
}

func TestDriftSchedule_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		d    *DriftSchedule
		i, n int
	}{
		{"zero amplitude", NewDriftSchedule(0, 2, 1), 5, 10},
		{"negative amplitude clamps to zero", NewDriftSchedule(-1, 2, 1), 5, 10},
		{"empty run", NewDriftSchedule(0.5, 2, 1), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.ErosionAt(tt.i, tt.n); got != 0 {
				t.Errorf("ErosionAt = %v, want 0", got)
			}
		})
	}
}

func TestNewDriftSchedule_ClampsAmplitude(t *testing.T) {
	if d := NewDriftSchedule(3, 1, 1); d.Amplitude != 1 {
		t.Errorf("Amplitude = %v, want 1", d.Amplitude)
	}
}
