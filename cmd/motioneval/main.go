// motioneval samples a motion file offline and prints its parameter values
// as CSV or JSON.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teslashibe/go-motion/pkg/driver"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/model"
	"github.com/teslashibe/go-motion/pkg/motionjson"
)

func main() {
	fps := flag.Float64("fps", 0, "Sample rate (default: the file's fps)")
	format := flag.String("format", "csv", "Output format: csv or json")
	modelFile := flag.String("model", "", "Model definition JSON (default: standard parameters)")
	strict := flag.Bool("strict", false, "Check metadata counts")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: motioneval [flags] file.motion3.json\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	file := flag.Arg(0)
	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	var opts []motionjson.Option
	if *strict {
		opts = append(opts, motionjson.WithConsistencyCheck())
	}
	doc, err := motionjson.ParseMotion(data, opts...)
	if err != nil {
		log.Fatalf("❌ %s: %v", file, err)
	}

	def := model.DefaultDefinition()
	if *modelFile != "" {
		if def, err = model.LoadDefinition(*modelFile); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	rate := *fps
	if rate == 0 {
		rate = doc.FPS
	}
	if rate == 0 {
		rate = driver.DefaultFPS
	}
	name := strings.TrimSuffix(filepath.Base(file), library.MotionSuffix)
	sampled, err := driver.Sample(name, doc, def, rate)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(sampled)
	case "csv":
		err = writeCSV(sampled, def.Build().IDs())
	default:
		log.Fatalf("❌ unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func writeCSV(s *driver.Sampled, ids []string) error {
	w := csv.NewWriter(os.Stdout)
	if err := w.Write(append([]string{"time"}, ids...)); err != nil {
		return err
	}

	row := make([]string, len(ids)+1)
	for _, f := range s.Frames {
		row[0] = strconv.FormatFloat(f.Time, 'f', 4, 64)
		for i, id := range ids {
			row[i+1] = strconv.FormatFloat(f.Parameters[id], 'f', 4, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
