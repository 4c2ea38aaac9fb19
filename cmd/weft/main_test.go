package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default, since the commands are
// package level and keep flag values between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)

	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...)
	}
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "weft version "+weft.Version+"\n", out)
}

func TestEncode(t *testing.T) {
	out, errOut, err := execute(t, `{"word":"hello","count":3}`, "encode", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "00000000028c04776f72648c0568656c6c6f8c05636f756e748500000003\n", out)
	assert.Contains(t, errOut, "type: Map (org.apache.hadoop.io.MapWritable)")
}

func TestEncode_Ordered(t *testing.T) {
	_, _, err := execute(t, `[1]`, "encode", "--ordered")
	assert.ErrorContains(t, err, "No dynamic-value to WritableComparable converter found for class: Array")

	out, _, err := execute(t, `7`, "encode", "--ordered", "-q")
	require.NoError(t, err)
	assert.Equal(t, "00000007\n", out)
}

func TestEncode_ConfigEncoding(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  encoding: base64\n"), 0o644))

	out, _, err := execute(t, `"hi"`, "--config", cfgPath, "encode", "-q")
	require.NoError(t, err)
	assert.Equal(t, "Amhp\n", out)

	out, _, err = execute(t, `"hi"`, "--config", cfgPath, "encode", "-q", "--encoding", "hex")
	require.NoError(t, err)
	assert.Equal(t, "026869\n", out)
}

func TestEncode_LuaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.lua")
	require.NoError(t, os.WriteFile(path, []byte(`return weft.sorted({b = 1, a = 2})`), 0o644))

	_, errOut, err := execute(t, "", "encode", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "type: SortedMap")
}

func TestEncodeDecode_Tagged(t *testing.T) {
	encoded, _, err := execute(t, "nested:\n  name: x\n  ratio: 2.5\nflag: true\n", "encode", "--format", "yaml", "--tagged", "-q")
	require.NoError(t, err)

	out, _, err := execute(t, encoded, "decode", "--tagged", "--compact")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nested":{"name":"x","ratio":2.5},"flag":true}`, out)
}

func TestDecode(t *testing.T) {
	out, _, err := execute(t, "0000002a", "decode", "--type", "int")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	out, _, err = execute(t, "0000002a", "decode", "--type", "Int32", "--tree")
	require.NoError(t, err)
	assert.Equal(t, "Int32 42\n", out)

	_, _, err = execute(t, "0000002a", "decode")
	assert.ErrorContains(t, err, "--type is required")

	_, _, err = execute(t, "00", "decode", "--type", "Int32")
	assert.ErrorContains(t, err, "failed to decode")
}

func TestKinds(t *testing.T) {
	out, _, err := execute(t, "", "kinds", "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| Text | `org.apache.hadoop.io.Text` | yes | no |")

	out, _, err = execute(t, "", "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "org.apache.hadoop.io.LongWritable")
}

func TestPipe_Memory(t *testing.T) {
	script := filepath.Join(t.TempDir(), "stage.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
function transform(v)
  if v.skip then
    return nil
  end
  v.n = v.n + 1
  return v
end
`), 0o644))

	input := "{\"n\":1}\n{\"n\":0,\"skip\":true}\n\n{\"n\":41}\n"
	out, _, err := execute(t, input, "pipe", "--script", script)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	eng := weft.New()
	var got []dynamic.Value
	for _, line := range lines {
		data, err := hex.DecodeString(line)
		require.NoError(t, err)
		rec, err := writable.UnmarshalTagged(data)
		require.NoError(t, err)
		v, err := eng.ToDynamic(rec)
		require.NoError(t, err)
		got = append(got, v)
	}

	for i, want := range []dynamic.Number{2, 42} {
		obj, ok := got[i].(*dynamic.Object)
		require.True(t, ok, "got %T", got[i])
		n, _ := obj.Get("n")
		assert.Equal(t, want, n)
	}
}

func TestPipe_Identity(t *testing.T) {
	out, _, err := execute(t, "\"a\"\n\"b\"\n", "pipe")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestPipe_Errors(t *testing.T) {
	_, _, err := execute(t, "", "pipe", "--backend", "redis")
	assert.ErrorContains(t, err, "--from and --to are required")

	_, _, err = execute(t, "", "pipe", "--dead-letter", "failed")
	assert.ErrorContains(t, err, "--dead-letter requires the redis backend")

	_, _, err = execute(t, "", "pipe", "--backend", "kafka")
	assert.ErrorContains(t, err, "unknown queue backend")

	_, _, err = execute(t, "", "pipe", "--script", filepath.Join(t.TempDir(), "missing.lua"))
	assert.ErrorContains(t, err, "failed to read script")
}

func TestPipe_RedisWithLock(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := t.Context()

	source := redis.New(mr.Addr(), "", 0, "orders")
	defer source.Close()
	require.NoError(t, source.Push(ctx, writable.Text("a")))
	require.NoError(t, source.Push(ctx, writable.Int32(2)))

	cfgPath := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("redis:\n  addr: "+mr.Addr()+"\n"), 0o644))

	_, errOut, err := execute(t, "", "--config", cfgPath, "pipe",
		"--backend", "redis", "--from", "orders", "--to", "shipped", "--lock")
	require.NoError(t, err)
	assert.Contains(t, errOut, ">>> moved 2, dropped 0, dead-lettered 0")

	sink := redis.New(mr.Addr(), "", 0, "shipped")
	defer sink.Close()
	n, err := sink.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.False(t, mr.Exists("weft:lock:orders"), "lock is released")
}

func TestPipe_RedisDeadLetter(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := t.Context()

	source := redis.New(mr.Addr(), "", 0, "orders")
	defer source.Close()
	require.NoError(t, source.Push(ctx, writable.Int32(1)))
	require.NoError(t, source.Push(ctx, writable.Text("oops")))

	script := filepath.Join(t.TempDir(), "stage.lua")
	require.NoError(t, os.WriteFile(script, []byte("function transform(v) return v * 2 end\n"), 0o644))
	cfgPath := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("redis:\n  addr: "+mr.Addr()+"\n"), 0o644))

	_, errOut, err := execute(t, "", "--config", cfgPath, "pipe", "--script", script,
		"--backend", "redis", "--from", "orders", "--to", "doubled", "--dead-letter", "failed")
	require.NoError(t, err)
	assert.Contains(t, errOut, ">>> moved 1, dropped 0, dead-lettered 1")

	dead := redis.New(mr.Addr(), "", 0, "failed")
	defer dead.Close()
	rec, err := dead.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Text("oops"), rec)
}
