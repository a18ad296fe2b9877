// Command schema writes JSON schema of feedrank config, used to validate and autocomplete config files.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/umputun/feedrank/pkg/config"
)

// Opts with schema tool options
type Opts struct {
	Compact bool `long:"compact" description:"write schema without indentation"`
	Args    struct {
		Output string `positional-arg-name:"output" description:"schema file, - for stdout"`
	} `positional-args:"yes"`
}

const defaultOutput = "feedrank.schema.json"

func main() {
	var opts Opts
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	out := opts.Args.Output
	if out == "" {
		out = defaultOutput
	}
	if err := writeSchema(out, opts.Compact); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if out != "-" {
		fmt.Printf("config schema written to %s\n", out)
	}
}

// writeSchema marshals config schema to path, "-" writes to stdout
func writeSchema(path string, compact bool) error {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(config.GenerateSchema())
	} else {
		data, err = json.MarshalIndent(config.GenerateSchema(), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:gosec // schema is public
		return fmt.Errorf("write schema %s: %w", path, err)
	}
	return nil
}
