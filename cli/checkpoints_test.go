package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointsCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	layout := fl.Layout{Version: "softmax.v1", Tensors: []fl.TensorSpec{{Name: "bias", Shape: []int{2}}}}
	name := checkpoint.FileName(2, 0.75, 0.5)
	require.NoError(t, checkpoint.Save(filepath.Join(dir, name), checkpoint.Record{
		Round:      2,
		Loss:       0.5,
		Accuracy:   0.75,
		Parameters: layout.Zeros(),
	}))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "list", args: []string{"list", dir}, want: name},
		{name: "show", args: []string{"show", filepath.Join(dir, name)}, want: "softmax.v1"},
		{name: "list usage", args: []string{"list"}, want: "usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			cmd := NewCheckpointsCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestViewOf(t *testing.T) {
	t.Parallel()

	rec := checkpoint.Record{Round: 1, Parameters: fl.Layout{Version: "softmax.v1"}.Zeros()}

	assert.Nil(t, viewOf("a.ckpt", rec, false).Parameters)
	v := viewOf("a.ckpt", rec, true)
	require.NotNil(t, v.Parameters)
	assert.Equal(t, "softmax.v1", v.Layout.Version)
}
