package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/adapters/lua"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/spf13/cobra"
)

var pipeCmd = &cobra.Command{
	Use:   "pipe [file]",
	Short: "Run a Lua processing stage between two record queues",
	Long: `Moves records from a source queue to a sink queue through an optional Lua
function. The function receives each record as a Lua value and returns the
value to forward, or nil to drop the record.

With the memory backend the source is filled from JSON Lines input and the
sink is printed as tagged records, one per line. With the redis backend
--from and --to name the queues, --dead-letter names a queue for failed
records, and --lock makes concurrent stages reading
the same source take turns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _ := cmd.Flags().GetString("backend")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		scriptPath, _ := cmd.Flags().GetString("script")
		entry, _ := cmd.Flags().GetString("entry")
		deadLetter, _ := cmd.Flags().GetString("dead-letter")
		lock, _ := cmd.Flags().GetBool("lock")
		lockTTL, _ := cmd.Flags().GetDuration("lock-ttl")

		enc, err := outputEncoding(cmd)
		if err != nil {
			return err
		}
		if backend == cli.BackendRedis && (from == "" || to == "") {
			return fmt.Errorf("--from and --to are required with the redis backend")
		}
		if deadLetter != "" && backend != cli.BackendRedis {
			return fmt.Errorf("--dead-letter requires the redis backend")
		}

		var transform weft.Transform
		if scriptPath != "" {
			src, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			script, err := lua.Compile(string(src), entry, engine.Scope())
			if err != nil {
				return err
			}
			defer script.Close()
			transform = script.Call
		}

		source, closeSource, err := cli.NewQueue(backend, from, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeSource()
		sink, closeSink, err := cli.NewQueue(backend, to, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeSink()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if backend == cli.BackendMemory {
			if err := fillQueue(ctx, cmd, args, source); err != nil {
				return err
			}
		}

		runner := weft.NewRunner(source, sink, transform)
		runner.Logger = logger
		if deadLetter != "" {
			dead, closeDead, err := cli.NewQueue(backend, deadLetter, cfg.Redis)
			if err != nil {
				return err
			}
			defer closeDead()
			runner.DeadLetter = dead
		}
		if lock {
			locker, closeLocker, err := cli.NewLocker(backend, cfg.Redis)
			if err != nil {
				return err
			}
			defer closeLocker()
			runner.Locker = locker
			runner.LockKey = from
			if runner.LockKey == "" {
				runner.LockKey = "stdin"
			}
			runner.LockTTL = lockTTL
		}
		res, err := runner.Run(ctx, engine)
		if err != nil {
			return err
		}
		logger.Info("Pipe finished", "moved", res.Moved, "dropped", res.Dropped, "dead_lettered", res.DeadLettered)

		if backend != cli.BackendMemory {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "moved %d, dropped %d, dead-lettered %d", res.Moved, res.Dropped, res.DeadLettered)
			return nil
		}
		return drainQueue(ctx, cmd, sink, enc)
	},
}

func fillQueue(ctx context.Context, cmd *cobra.Command, args []string, q ports.RecordQueue) error {
	in, name, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	err = cli.ScanJSONLines(in, engine.Scope(), func(v dynamic.Value) error {
		rec, err := engine.ToWritable(v)
		if err != nil {
			return err
		}
		return q.Push(ctx, rec)
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

func drainQueue(ctx context.Context, cmd *cobra.Command, q ports.RecordQueue, enc cli.Encoding) error {
	for {
		rec, err := q.Pop(ctx)
		if errors.Is(err, ports.ErrQueueEmpty) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err := writable.MarshalTagged(rec)
		if err != nil {
			return err
		}
		if err := cli.WriteRecord(cmd.OutOrStdout(), data, enc); err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.AddCommand(pipeCmd)

	pipeCmd.Flags().String("backend", cli.BackendMemory, "Queue backend: memory or redis")
	pipeCmd.Flags().String("from", "", "Source queue name (redis backend)")
	pipeCmd.Flags().String("to", "", "Sink queue name (redis backend)")
	pipeCmd.Flags().StringP("script", "s", "", "Lua script defining the stage function")
	pipeCmd.Flags().String("entry", "transform", "Name of the Lua stage function")
	pipeCmd.Flags().StringP("encoding", "e", "hex", "Output encoding: hex, base64 or raw")
	pipeCmd.Flags().String("dead-letter", "", "Queue receiving records that fail (redis backend)")
	pipeCmd.Flags().Bool("lock", false, "Hold a lock on the source queue while draining it")
	pipeCmd.Flags().Duration("lock-ttl", weft.DefaultLockTTL, "Expiry of the source queue lock")
}
