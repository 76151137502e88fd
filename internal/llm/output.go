package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var compiled sync.Map // *Schema -> *jsonschema.Schema

// decode turns a raw reply into a Response. With a schema the reply is
// unfenced and validated; a reply that fails validation after hitting the
// token limit is reported as truncated.
func decode(vendor string, req Request, raw string, truncated bool) (*Response, error) {
	content := json.RawMessage(raw)
	if req.Schema != nil {
		content = StripCodeFence(content)
		if err := validate(req.Schema, content); err != nil {
			kind := KindInvalidOutput
			if truncated {
				kind = KindTruncated
			}
			return nil, &Error{Kind: kind, Vendor: vendor, Content: content, Err: err}
		}
	}
	return &Response{Content: content, Truncated: truncated}, nil
}

func validate(s *Schema, content json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	sch, err := compile(s)
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}

func compile(s *Schema) (*jsonschema.Schema, error) {
	if sch, ok := compiled.Load(s); ok {
		return sch.(*jsonschema.Schema), nil
	}
	def := s.validation()
	if def == nil {
		return nil, errors.New("schema " + s.Name + " has no definition")
	}
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	compiled.Store(s, sch)
	return sch, nil
}

// StripCodeFence removes a markdown fence (with or without a language tag)
// around a JSON reply.
func StripCodeFence(raw json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(raw)
	rest, ok := bytes.CutPrefix(b, []byte("```"))
	if !ok {
		return b
	}
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		rest = bytes.TrimPrefix(rest, []byte("json"))
	}
	rest = bytes.TrimSpace(rest)
	rest = bytes.TrimSuffix(rest, []byte("```"))
	return bytes.TrimSpace(rest)
}
