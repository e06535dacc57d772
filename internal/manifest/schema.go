package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/k8s.schema.json
var k8sSchema []byte

const k8sSchemaURL = "k8s.schema.json"

// schema compiles the embedded Deployment/Service schema on first use.
var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(k8sSchema))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", k8sSchemaURL, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(k8sSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("registering %s: %w", k8sSchemaURL, err)
	}
	s, err := c.Compile(k8sSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", k8sSchemaURL, err)
	}
	return s, nil
})
