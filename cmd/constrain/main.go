package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/reoring/constrain"
	"github.com/reoring/constrain/schema"
	"github.com/reoring/constrain/specfile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "validate":
		validateCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "constrain CLI\n\nUsage:\n  constrain validate -spec spec.yaml [-input doc.json] [-exhaustive]\n  constrain schema -spec spec.yaml [-format jsonschema]\n\nNotes:\n  - validate reads the JSON document from -input, or stdin when omitted.\n  - validate prints the validated (possibly transformed) document on success.")
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var specPath, inputPath string
	var exhaustive bool
	fs.StringVar(&specPath, "spec", "", "constraint document (YAML or JSON)")
	fs.StringVar(&inputPath, "input", "", "JSON document to validate (default: stdin)")
	fs.BoolVar(&exhaustive, "exhaustive", false, "collect every violation instead of stopping at the first")
	_ = fs.Parse(args)
	if specPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	c, err := specfile.LoadFile(specPath)
	if err != nil {
		fatalf("loading spec: %v", err)
	}
	v, err := constrain.Compile(c)
	if err != nil {
		fatalf("compiling constraints: %v", err)
	}

	doc, err := readJSON(inputPath)
	if err != nil {
		fatalf("reading input: %v", err)
	}

	var out any
	if exhaustive {
		out, err = v.ValidateExhaustive(doc)
	} else {
		out, err = v.Validate(doc)
	}
	if err != nil {
		if ve, ok := constrain.AsValueError(err); ok {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ve.Dump())
			os.Exit(1)
		}
		fatalf("validate: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatalf("encoding result: %v", err)
	}
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var specPath, format string
	fs.StringVar(&specPath, "spec", "", "constraint document (YAML or JSON)")
	fs.StringVar(&format, "format", schema.JSONSchema, "schema format to emit")
	_ = fs.Parse(args)
	if specPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	c, err := specfile.LoadFile(specPath)
	if err != nil {
		fatalf("loading spec: %v", err)
	}
	doc, err := schema.Build(c, format)
	if err != nil {
		fatalf("building schema: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		fatalf("encoding schema: %v", err)
	}
}

func readJSON(path string) (any, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
