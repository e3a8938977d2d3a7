package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/productview/internal/core"
)

// DecodeRecords reads a JSON array of record objects from r.
//
// The document as a whole must be an array; anything else is
// ErrMalformedDataset. Individual elements that fail to decode are returned
// with RecordInput.Err set so ingestion can skip and report them.
func DecodeRecords(r io.Reader, maxBytes int64) ([]core.RecordInput, error) {
	dec := json.NewDecoder(newBodyReader(r, maxBytes))

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, err
		}
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedDataset)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array, got %v", ErrMalformedDataset, tok)
	}

	var inputs []core.RecordInput
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, errTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedDataset, len(inputs), err)
		}

		var in core.RecordInput
		if err := json.Unmarshal(raw, &in); err != nil {
			in = core.RecordInput{Err: err}
		}
		inputs = append(inputs, in)
	}

	if _, err := dec.Token(); err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: unterminated array: %v", ErrMalformedDataset, err)
	}
	if inputs == nil {
		inputs = []core.RecordInput{}
	}
	return inputs, nil
}
