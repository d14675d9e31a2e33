package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestFromRowsRoundTrip(t *testing.T) {
	rows := [4][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	m := FromRows(rows)

	// Row 0, column 3 is the X translation slot.
	if m[12] != 4 {
		t.Errorf("m[12] = %f, want 4", m[12])
	}
	if m.Rows() != rows {
		t.Errorf("Rows() = %v, want %v", m.Rows(), rows)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I = %v, want %v", result, m)
	}
}

func TestMulOrder(t *testing.T) {
	// Translate after scale: p' = T * S * p
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(V3(1, 1, 1))
	if !got.ApproxEqual(V3(12, 2, 2), 1e-6) {
		t.Errorf("T*S applied to (1,1,1) = %v, want (12,2,2)", got)
	}
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		p    Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), V3(1, 2, 3), V3(11, 22, 33)},
		{"scale", Scale(2, 3, 4), V3(1, 1, 1), V3(2, 3, 4)},
		{"diagonal", Diagonal(V3(0.5, 1, 2)), V3(2, 2, 2), V3(1, 2, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformPoint(tt.p); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZUpToYUp(t *testing.T) {
	m := ZUpToYUp()

	// Up in authoring space (+Z) becomes +Y.
	if got := m.TransformDirection(V3(0, 0, 1)); !got.ApproxEqual(V3(0, 1, 0), 1e-6) {
		t.Errorf("+Z -> %v, want +Y", got)
	}
	// +Y becomes -Z.
	if got := m.TransformDirection(V3(0, 1, 0)); !got.ApproxEqual(V3(0, 0, -1), 1e-6) {
		t.Errorf("+Y -> %v, want -Z", got)
	}
}

func TestRotateAxisY90(t *testing.T) {
	m := RotateAxis(V3(0, 1, 0), math.Pi/2)
	got := m.TransformDirection(V3(1, 0, 0))
	if !got.ApproxEqual(V3(0, 0, -1), 1e-5) {
		t.Errorf("RotateY(90) * X = %v, want (0, 0, -1)", got)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(3, -4, 5).Mul(RotateAxis(V3(0, 0, 1), 0.7)).Mul(Scale(2, 2, 2))
	inv := m.Inverse()

	if got := m.Mul(inv); !got.ApproxEqual(Identity(), 1e-5) {
		t.Errorf("M * M^-1 = %v, want identity", got)
	}
}

func TestInverseSingular(t *testing.T) {
	if got := Scale(0, 1, 1).Inverse(); got != Identity() {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestDecompose(t *testing.T) {
	rot := QuatFromAxisAngle(V3(0, 1, 0), math.Pi/3)
	m := Translate(1, 2, 3).Mul(rot.ToMat4()).Mul(Scale(2, 2, 2))

	tr, q, s := m.Decompose()
	if !tr.ApproxEqual(V3(1, 2, 3), 1e-5) {
		t.Errorf("translation = %v", tr)
	}
	if !s.ApproxEqual(V3(2, 2, 2), 1e-5) {
		t.Errorf("scale = %v", s)
	}
	if d := q.Dot(rot); d < 0.9999 && d > -0.9999 {
		t.Errorf("rotation = %v, want %v", q, rot)
	}
}

func TestDecomposeNegativeScale(t *testing.T) {
	_, _, s := Scale(-1, 1, 1).Decompose()
	if s.X >= 0 {
		t.Errorf("mirrored matrix should report negative X scale, got %v", s)
	}
}
