package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/metareg/api/v1beta1/registries"
	"github.com/macropower/metareg/pkg/yaml"
)

var (
	outFile = flag.String("o", "schema.json", "Output file for the generated schema, relative to -root")
	root    = flag.String("root", ".", "Module root, scanned for doc comments")
)

func main() {
	flag.Parse()

	err := os.Chdir(*root)
	if err != nil {
		log.Fatalf("change to module root: %v", err)
	}

	gen := yaml.NewSchemaGenerator(registries.New(), "github.com/macropower/metareg")
	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	// Write schema.json file.
	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
