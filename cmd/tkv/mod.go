// Package main implements a client to run transaction scripts against an
// in-memory transactional store.
//
//	go run mod.go run script.txt
//	go run mod.go --strategy permissive --init data.yml run script.txt
//	go run mod.go --init data.yml run --dump script.txt
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/tkv/db"
	"go.dedis.ch/tkv/internal/script"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

func main() {
	app := makeApp(os.Stdin, os.Stdout)

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func makeApp(in io.Reader, out io.Writer) *urfave.App {
	return &urfave.App{
		Name:  "tkv",
		Usage: "run transaction scripts against an in-memory store",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  "strategy",
				Usage: "concurrency strategy (pessimistic or permissive)",
				Value: "pessimistic",
			},
			&urfave.StringFlag{
				Name:  "init",
				Usage: "yaml file with the initial pairs of the store",
			},
		},
		Commands: []*urfave.Command{
			{
				Name:      "run",
				Usage:     "execute a script, or read it from stdin with -",
				ArgsUsage: "SCRIPT",
				Flags: []urfave.Flag{
					&urfave.BoolFlag{
						Name:  "dump",
						Usage: "print the committed pairs after the script",
					},
				},
				Action: func(c *urfave.Context) error {
					return runAction(c, in, out)
				},
			},
		},
	}
}

func runAction(c *urfave.Context, in io.Reader, out io.Writer) error {
	engine, err := makeEngine(c.String("strategy"), c.String("init"))
	if err != nil {
		return err
	}

	input := in

	path := c.Args().First()
	if path == "" {
		return xerrors.New("missing script argument")
	}

	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return xerrors.Errorf("couldn't open script: %v", err)
		}

		defer file.Close()

		input = file
	}

	err = script.Run(engine.NewSession(), input, out)
	if err != nil {
		return xerrors.Errorf("script failed: %v", err)
	}

	if c.Bool("dump") {
		err = dump(engine, out)
		if err != nil {
			return xerrors.Errorf("couldn't dump the store: %v", err)
		}
	}

	return nil
}

func makeEngine(strategy, init string) (*db.DB, error) {
	s, err := db.ParseStrategy(strategy)
	if err != nil {
		return nil, xerrors.Errorf("couldn't parse strategy: %v", err)
	}

	builder := db.NewBuilder().WithStrategy(s)

	if init != "" {
		data, err := loadInitialData(init)
		if err != nil {
			return nil, xerrors.Errorf("couldn't load initial data: %v", err)
		}

		builder.WithInitialData(data)
	}

	engine, err := builder.Build()
	if err != nil {
		return nil, xerrors.Errorf("couldn't build engine: %v", err)
	}

	return engine, nil
}

func loadInitialData(path string) (map[string][]byte, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("couldn't read file: %v", err)
	}

	pairs := make(map[string]string)

	err = yaml.Unmarshal(buffer, &pairs)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal yaml: %v", err)
	}

	data := make(map[string][]byte)
	for key, value := range pairs {
		data[key] = []byte(value)
	}

	return data, nil
}

func dump(engine *db.DB, out io.Writer) error {
	pairs := make(map[string][]byte)

	err := engine.ForEach(func(key, value []byte) error {
		pairs[string(key)] = value

		return nil
	})
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(out, "%s = %s\n", key, pairs[key])
	}

	return nil
}
