// Command debug_diff reconciles two document files without touching a
// database. Each file holds a JSON or YAML list of documents.
//
//	go run ./cmd/debug_diff -identity _id -exclude updated_at left.json right.yaml
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"collection-reconciler/core/document"
	"collection-reconciler/core/reconcile"
	"collection-reconciler/core/sink"

	"gopkg.in/yaml.v3"
)

func main() {
	identity := flag.String("identity", reconcile.DefaultIdentityField, "identity field")
	exclude := flag.String("exclude", "", "comma separated field paths to ignore")
	ignoreOrder := flag.Bool("ignore-order", false, "compare sequences as multisets")
	format := flag.String("format", "json", "report format: json or yaml")
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatalf("usage: debug_diff [flags] <source file> <target file>")
	}

	src, err := readDocuments(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	tgt, err := readDocuments(flag.Arg(1))
	if err != nil {
		log.Fatal(err)
	}

	spec := reconcile.CollectionSpec{
		Name:          strings.TrimSuffix(filepath.Base(flag.Arg(0)), filepath.Ext(flag.Arg(0))),
		IdentityField: *identity,
		IgnoreOrder:   *ignoreOrder,
	}
	if *exclude != "" {
		spec.ExcludeFields = strings.Split(*exclude, ",")
	}

	engine := reconcile.NewEngine(nil, nil, nil, reconcile.EngineOptions{})
	result, err := engine.ReconcileDocuments(spec, src, tgt)
	if err != nil {
		log.Fatal(err)
	}

	f, err := sink.ParseFormat(*format)
	if err != nil {
		log.Fatal(err)
	}
	data, err := sink.Encode(result, f)
	if err != nil {
		log.Fatal(err)
	}
	os.Stdout.Write(data)

	s := result.Summary()
	fmt.Fprintf(os.Stderr, "missing_in_source=%d missing_in_target=%d common=%d differences=%d\n",
		s.MissingInSource, s.MissingInTarget, s.Common, s.Differences)
}

func readDocuments(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	docs := make([]document.Document, 0, len(raw))
	for i, r := range raw {
		doc, err := document.NormalizeDocument(r, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
