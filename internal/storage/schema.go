package storage

import (
	"fmt"
	"strings"

	"alera/internal/util"

	"github.com/xeipuuv/gojsonschema"
)

// corpusSchema describes a corpus file: an array of player records in index
// order. draft_year shows up as a string or a number depending on the export.
const corpusSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "chunk"],
    "properties": {
      "name": {"type": "string"},
      "chunk": {"type": "string", "minLength": 1},
      "draft_year": {"type": ["string", "number", "null"]},
      "draft_range": {"type": ["string", "null"]}
    }
  }
}`

var corpusSchemaLoader = gojsonschema.NewStringLoader(corpusSchema)

// validateCorpus reports every schema violation in one error wrapping
// util.ErrMalformedCorpus.
func validateCorpus(path string, data []byte) error {
	result, err := gojsonschema.Validate(corpusSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", util.ErrMalformedCorpus, path, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("%w: %s: %s", util.ErrMalformedCorpus, path, strings.Join(msgs, "; "))
}
