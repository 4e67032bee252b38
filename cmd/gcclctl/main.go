// Copyright 2024 The gccl Authors
// This file is part of gccl.
//
// gccl is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gccl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gccl. If not, see <http://www.gnu.org/licenses/>.

// Command gcclctl is a small driver exercising every container kind from
// the command line, including the C14 save/load framing for each.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jnavia/gccl/alloc"
	"github.com/jnavia/gccl/bloom"
	"github.com/jnavia/gccl/config"
	"github.com/jnavia/gccl/dict"
	"github.com/jnavia/gccl/list"
	"github.com/jnavia/gccl/logging"
	"github.com/jnavia/gccl/pq"
	"github.com/jnavia/gccl/scapegoat"
	"github.com/jnavia/gccl/serialize"
	"github.com/jnavia/gccl/suffixtree"
)

func intCompare(a, b int) int { return a - b }

func saveString(w io.Writer, v string) error {
	return serialize.WriteLenPrefixedBytes(w, []byte(v))
}

func readString(r io.Reader) (string, error) {
	b, err := serialize.ReadLenPrefixedBytes(r)
	return string(b), err
}

// loadConfig reads the --config YAML file if given, else returns the
// zero-value config.Config (every accessor falls back to the spec's
// hard-coded constants).
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.LoadFile(path)
}

func main() {
	app := &cli.App{
		Name:  "gcclctl",
		Usage: "exercise gccl's containers from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file of slab/pool/dict/bloom tuning overrides (see config.Config)",
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			dictCommand(),
			pqCommand(),
			treeCommand(),
			suffixCommand(),
			bloomCommand(),
			poolCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		logging.L().Errorw("gcclctl failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "build a list from ARGS, print it, then round-trip it through save/load",
		ArgsUsage: "ITEM [ITEM...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			l := list.New[string](nil)
			if err := l.UseHeapSized(cfg.SlabChunkSize()); err != nil {
				return err
			}
			for _, a := range c.Args().Slice() {
				if _, err := l.PushBack(a); err != nil {
					return err
				}
			}
			var printed []string
			l.Each(func(v string) bool { printed = append(printed, v); return true })
			fmt.Println(strings.Join(printed, ", "))

			var buf bytes.Buffer
			if err := l.Save(&buf, saveString); err != nil {
				return err
			}
			loaded, err := list.Load[string](&buf, nil, readString)
			if err != nil {
				return err
			}
			fmt.Printf("round-tripped %d elements\n", loaded.Size())
			return nil
		},
	}
}

func dictCommand() *cli.Command {
	return &cli.Command{
		Name:      "dict",
		Usage:     "add KEY=VALUE pairs and print them back out",
		ArgsUsage: "KEY=VALUE [KEY=VALUE...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			dict.SetBucketSchedule(cfg.DictBucketSchedule())
			d := dict.New[string](509)
			for _, a := range c.Args().Slice() {
				parts := strings.SplitN(a, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("expected KEY=VALUE, got %q", a)
				}
				if _, err := d.Add([]byte(parts[0]), parts[1]); err != nil {
					return err
				}
			}
			it := d.NewIterator()
			for kv, ok := it.First(); ok; kv, ok = it.Next() {
				fmt.Printf("%s=%s\n", kv.Key, kv.Val)
			}
			if err := it.Err(); err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := d.Save(&buf, saveString); err != nil {
				return err
			}
			loaded, err := dict.Load[string](&buf, 509, readString)
			if err != nil {
				return err
			}
			fmt.Printf("round-tripped %d entries\n", loaded.Size())
			return nil
		},
	}
}

func pqCommand() *cli.Command {
	return &cli.Command{
		Name:      "pq",
		Usage:     "insert PRIORITY:VALUE pairs and pop them in order",
		ArgsUsage: "PRIORITY:VALUE [PRIORITY:VALUE...]",
		Action: func(c *cli.Context) error {
			q := pq.New[string]()
			for _, a := range c.Args().Slice() {
				parts := strings.SplitN(a, ":", 2)
				if len(parts) != 2 {
					return fmt.Errorf("expected PRIORITY:VALUE, got %q", a)
				}
				key, err := strconv.ParseInt(parts[0], 10, 64)
				if err != nil {
					return err
				}
				if _, err := q.Insert(key, parts[1]); err != nil {
					return err
				}
			}
			var buf bytes.Buffer
			if err := q.Save(&buf, saveString); err != nil {
				return err
			}
			loaded, err := pq.Load[string](&buf, readString)
			if err != nil {
				return err
			}

			for loaded.Size() > 0 {
				v, k, err := loaded.Pop()
				if err != nil {
					return err
				}
				fmt.Printf("%d: %s\n", k, v)
			}
			return nil
		},
	}
}

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "insert integers into a scapegoat tree and print them in order",
		ArgsUsage: "N [N...]",
		Action: func(c *cli.Context) error {
			tr := scapegoat.New[int](intCompare)
			for _, a := range c.Args().Slice() {
				n, err := strconv.Atoi(a)
				if err != nil {
					return err
				}
				if err := tr.Add(n); err != nil {
					return err
				}
			}
			it := tr.NewIterator()
			var out []string
			for v, ok := it.First(); ok; v, ok = it.Next() {
				out = append(out, strconv.Itoa(*v))
			}
			fmt.Println(strings.Join(out, ", "))
			fmt.Printf("max leaf depth: %d\n", tr.MaxLeafDepth())

			var buf bytes.Buffer
			if err := tr.Save(&buf, serialize.WriteFixed[int]); err != nil {
				return err
			}
			loaded, err := scapegoat.Load[int](&buf, intCompare, serialize.ReadFixed[int])
			if err != nil {
				return err
			}
			fmt.Printf("round-tripped %d nodes\n", loaded.Size())
			return nil
		},
	}
}

func suffixCommand() *cli.Command {
	return &cli.Command{
		Name:      "suffix",
		Usage:     "build a suffix tree over TEXT and look up WORDs in it",
		ArgsUsage: "TEXT WORD [WORD...]",
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("expected TEXT and at least one WORD")
			}
			text, err := suffixtree.NewText([]byte(args[0]))
			if err != nil {
				return err
			}
			tr := suffixtree.New()
			if err := tr.Build(text); err != nil {
				return err
			}
			for _, w := range args[1:] {
				fmt.Printf("%s: %d\n", w, tr.Find([]byte(w)))
			}

			var buf bytes.Buffer
			if err := tr.Save(&buf); err != nil {
				return err
			}
			loaded, err := suffixtree.Load(&buf)
			if err != nil {
				return err
			}
			if len(args) > 1 {
				fmt.Printf("round-tripped, first word still found at: %d\n", loaded.Find([]byte(args[1])))
			}
			return nil
		},
	}
}

func bloomCommand() *cli.Command {
	return &cli.Command{
		Name:      "bloom",
		Usage:     "size a filter for CAPACITY keys, add the WORDs, then test their membership",
		ArgsUsage: "CAPACITY WORD [WORD...]",
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("expected CAPACITY and at least one WORD")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			_, p := cfg.BloomDefaults()
			f := bloom.New(n, p)
			for _, w := range args[1:] {
				if err := f.Add([]byte(w)); err != nil {
					return err
				}
			}
			for _, w := range args[1:] {
				fmt.Printf("%s: %v\n", w, f.Find([]byte(w)))
			}

			var buf bytes.Buffer
			if err := f.Save(&buf); err != nil {
				return err
			}
			loaded, err := bloom.Load(&buf)
			if err != nil {
				return err
			}
			fmt.Printf("round-tripped, %s still found: %v\n", args[1], loaded.Find([]byte(args[1])))
			return nil
		},
	}
}

func poolCommand() *cli.Command {
	return &cli.Command{
		Name:      "pool",
		Usage:     "bump-allocate SIZE byte buffers out of an arena pool sized from --config",
		ArgsUsage: "SIZE [SIZE...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			p := alloc.NewPoolSized(nil,
				int(cfg.PoolBoundarySize().Bytes()),
				int(cfg.PoolMinAlloc().Bytes()),
				cfg.PoolMaxIndex())
			for _, a := range c.Args().Slice() {
				n, err := strconv.Atoi(a)
				if err != nil {
					return err
				}
				buf := p.Alloc(n)
				fmt.Printf("allocated %d bytes (owns: %v)\n", len(buf), p.Owns(buf))
			}
			p.Clear()
			fmt.Println("pool cleared")
			return nil
		},
	}
}
