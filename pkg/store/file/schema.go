package file

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const datasetSchemaURL = "https://bookshelf.local/schema/dataset.schema.json"

//go:embed schema/dataset.schema.json
var datasetSchemaJSON []byte

var (
	datasetSchemaOnce sync.Once
	datasetSchema     *jsonschema.Schema
	datasetSchemaErr  error
)

// compiledSchema compiles the embedded dataset schema on first use.
func compiledSchema() (*jsonschema.Schema, error) {
	datasetSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(datasetSchemaURL, bytes.NewReader(datasetSchemaJSON)); err != nil {
			datasetSchemaErr = fmt.Errorf("failed to add dataset schema: %w", err)
			return
		}
		datasetSchema, datasetSchemaErr = compiler.Compile(datasetSchemaURL)
	})
	return datasetSchema, datasetSchemaErr
}

// checkSchema validates a raw data document against the dataset schema.
func checkSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data after document")
	}
	return schema.Validate(doc)
}
