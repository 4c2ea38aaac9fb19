package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "JSON": FormatJSON, "yml": FormatYAML, "lua": FormatLua} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("toml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatFromPath("values.YML"))
	assert.Equal(t, FormatLua, FormatFromPath("stage.lua"))
	assert.Equal(t, FormatAuto, FormatFromPath("-"))
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		input  string
		want   string
	}{
		{"JSON", FormatJSON, `{"a":[1,2]}`, `{"a":[1,2]}`},
		{"YAML", FormatYAML, "a:\n  - 1\n  - 2\n", `{"a":[1,2]}`},
		{"Auto JSON", FormatAuto, `[true]`, `[true]`},
		{"Auto YAML", FormatAuto, "name: weft\n", `{"name":"weft"}`},
		{"Lua", FormatLua, `return {a = {1, 2}}`, `{"a":[1,2]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ReadValue(strings.NewReader(tc.input), tc.format, nil)
			require.NoError(t, err)
			out, err := v.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(out))
		})
	}

	_, err := ParseValue([]byte(`{`), FormatJSON, nil)
	assert.Error(t, err)
}

func TestScanJSONLines(t *testing.T) {
	input := "1\n\n\"two\"\n[3]\n"
	var got []dynamic.Value
	err := ScanJSONLines(strings.NewReader(input), nil, func(v dynamic.Value) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, dynamic.Number(1), got[0])
	assert.Equal(t, dynamic.String("two"), got[1])

	err = ScanJSONLines(strings.NewReader("1\n{bad\n"), nil, func(dynamic.Value) error { return nil })
	assert.ErrorContains(t, err, "line 2")
}

func TestEncoding(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x2a}

	for _, e := range []Encoding{EncodingHex, EncodingBase64, EncodingRaw} {
		t.Run(string(e), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRecord(&buf, data, e))

			back, err := e.Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, data, back)
		})
	}

	assert.Equal(t, "0000002a", string(EncodingHex.Encode(data)))
	assert.Equal(t, "AAAAKg==", string(EncodingBase64.Encode(data)))

	_, err := EncodingHex.Decode([]byte("0g"))
	assert.ErrorContains(t, err, "invalid hex input")

	_, err = ParseEncoding("octal")
	assert.Error(t, err)
}

func TestColorProfile(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, termenv.Ascii, ColorProfile("auto", &buf))
	assert.Equal(t, termenv.Ascii, ColorProfile("never", &buf))
	assert.NotEqual(t, termenv.Ascii, ColorProfile("always", &buf))
	assert.False(t, IsTerminal(&buf))
}

func TestNewEngine(t *testing.T) {
	cfg := config.Default()
	eng, reg, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, reg)

	_, err = eng.ToWritable(dynamic.String("x"))
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	cfg.Metrics.Enabled = false
	_, reg, err = NewEngine(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestNewQueue(t *testing.T) {
	q, closeFn, err := NewQueue(BackendMemory, "in", config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Queue{}, q)
	assert.NoError(t, closeFn())

	_, _, err = NewQueue("kafka", "in", config.RedisConfig{})
	assert.ErrorContains(t, err, "unknown queue backend")
}

func TestNewLocker(t *testing.T) {
	locker, closeFn, err := NewLocker(BackendMemory, config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Locker{}, locker)
	assert.NoError(t, closeFn())

	locker, closeFn, err = NewLocker(BackendRedis, config.RedisConfig{Addr: "localhost:0"})
	require.NoError(t, err)
	assert.IsType(t, &redis.Locker{}, locker)
	assert.NoError(t, closeFn())

	_, _, err = NewLocker("etcd", config.RedisConfig{})
	assert.ErrorContains(t, err, "unknown queue backend")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(t.Context(), -4))

	logger, err = NewLogger(config.LogConfig{Level: "warn"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(t.Context(), -4))

	_, err = NewLogger(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
