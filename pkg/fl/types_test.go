package fl_test

import (
	"testing"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() fl.Layout {
	return fl.Layout{
		Version: "softmax.v1",
		Tensors: []fl.TensorSpec{
			{Name: "weight", Shape: []int{3, 4}},
			{Name: "bias", Shape: []int{3}},
		},
	}
}

func TestConform(t *testing.T) {
	t.Parallel()

	layout := testLayout()

	tests := []struct {
		name    string
		mutate  func(ps *fl.ParameterSet)
		wantErr bool
	}{
		{
			name:   "matching parameters",
			mutate: func(_ *fl.ParameterSet) {},
		},
		{
			name:    "different version",
			mutate:  func(ps *fl.ParameterSet) { ps.Layout.Version = "softmax.v2" },
			wantErr: true,
		},
		{
			name: "missing tensor",
			mutate: func(ps *fl.ParameterSet) {
				ps.Tensors = ps.Tensors[:1]
			},
			wantErr: true,
		},
		{
			name: "wrong shape",
			mutate: func(ps *fl.ParameterSet) {
				ps.Tensors[1].Shape = []int{4}
			},
			wantErr: true,
		},
		{
			name: "truncated data",
			mutate: func(ps *fl.ParameterSet) {
				ps.Tensors[0].Data = ps.Tensors[0].Data[:5]
			},
			wantErr: true,
		},
		{
			name: "descriptor shape differs",
			mutate: func(ps *fl.ParameterSet) {
				ps.Layout.Tensors[0].Shape = []int{4, 3}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ps := layout.Zeros()
			tt.mutate(&ps)
			err := ps.Conform(layout)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkgerrors.ErrParameterMismatch)

				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	ps := testLayout().Zeros()
	cp := ps.Clone()
	cp.Tensors[0].Data[0] = 42
	cp.Layout.Tensors[0].Shape[0] = 9

	assert.Equal(t, 0.0, ps.Tensors[0].Data[0])
	assert.Equal(t, 3, ps.Layout.Tensors[0].Shape[0])
}

func TestLayoutValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testLayout().Validate())

	bad := testLayout()
	bad.Tensors[1].Shape = []int{0}
	assert.ErrorIs(t, bad.Validate(), pkgerrors.ErrParameterMismatch)

	assert.ErrorIs(t, fl.Layout{}.Validate(), pkgerrors.ErrParameterMismatch)
}
