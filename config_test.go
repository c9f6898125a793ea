package fedlearn_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/fedlearn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(valid, []byte(`
[client]
client_id = "c1"
client_key = "secret"
channel_id = "ch1"
`), 0o600))
	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[client\nclient_id = "), 0o600))

	tests := []struct {
		name string
		path string
		want fedlearn.ClientConfig
		err  bool
	}{
		{name: "valid", path: valid, want: fedlearn.ClientConfig{ClientID: "c1", ClientKey: "secret", ChannelID: "ch1"}},
		{name: "missing file", path: filepath.Join(dir, "absent.toml"), err: true},
		{name: "malformed", path: invalid, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := fedlearn.LoadConfig(tt.path)
			if tt.err {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Client)
		})
	}
}
