package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome classifies how an intercepted invocation ended.
type Outcome string

const (
	// OutcomeSuccess means the call returned without error.
	OutcomeSuccess Outcome = "success"

	// OutcomeError means the call failed and the error reached the caller.
	OutcomeError Outcome = "error"

	// OutcomeHandled means the call failed and every error handler suppressed the error.
	OutcomeHandled Outcome = "handled"
)

// Entry is one journaled invocation.
type Entry struct {
	ID         uuid.UUID
	Class      string
	Member     string
	ArgsJSON   []byte
	ResultJSON []byte
	Error      string
	Outcome    Outcome
	StartedAt  time.Time
	Duration   time.Duration
}

// argsDocument is the stored JSON shape of aspect.Args.
type argsDocument struct {
	Positional []jsoniter.RawMessage          `json:"positional"`
	Keyword    map[string]jsoniter.RawMessage `json:"keyword,omitempty"`
}

// NewEntry builds an entry for an invocation of attr that started at startedAt.
// Values that cannot be encoded as JSON are stored as their %v string.
func NewEntry(attr aspect.Attribute, args aspect.Args, startedAt time.Time, duration time.Duration) Entry {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Entry{
		ID:        id,
		Class:     attr.Class().Name(),
		Member:    attr.Name(),
		ArgsJSON:  encodeArgs(args),
		StartedAt: startedAt,
		Duration:  duration,
	}
}

// withOutcome returns a copy of e completed with the outcome of the call.
func (e Entry) withOutcome(outcome Outcome, result any, err error) Entry {
	e.Outcome = outcome

	if outcome == OutcomeSuccess {
		e.ResultJSON = encodeValue(result)
	}

	if err != nil {
		e.Error = err.Error()
	}

	return e
}

// Args decodes the stored arguments. JSON numbers decode as float64.
func (e Entry) Args() (aspect.Args, error) {
	var doc argsDocument
	if err := json.Unmarshal(e.ArgsJSON, &doc); err != nil {
		return aspect.Args{}, errors.Join(ErrDecodingEntryFailed, err)
	}

	args := aspect.Args{Positional: make([]any, len(doc.Positional))}
	for i, raw := range doc.Positional {
		if err := json.Unmarshal(raw, &args.Positional[i]); err != nil {
			return aspect.Args{}, errors.Join(ErrDecodingEntryFailed, err)
		}
	}

	if len(doc.Keyword) > 0 {
		args.Keyword = make(map[string]any, len(doc.Keyword))
		for name, raw := range doc.Keyword {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return aspect.Args{}, errors.Join(ErrDecodingEntryFailed, err)
			}
			args.Keyword[name] = v
		}
	}

	return args, nil
}

// DecodeResult decodes the stored result into v. It is a no-op for entries without a result.
func (e Entry) DecodeResult(v any) error {
	if len(e.ResultJSON) == 0 {
		return nil
	}

	if err := json.Unmarshal(e.ResultJSON, v); err != nil {
		return errors.Join(ErrDecodingEntryFailed, err)
	}

	return nil
}

func encodeArgs(args aspect.Args) []byte {
	doc := argsDocument{Positional: make([]jsoniter.RawMessage, len(args.Positional))}
	for i, v := range args.Positional {
		doc.Positional[i] = encodeValue(v)
	}

	if len(args.Keyword) > 0 {
		doc.Keyword = make(map[string]jsoniter.RawMessage, len(args.Keyword))
		for name, v := range args.Keyword {
			doc.Keyword[name] = encodeValue(v)
		}
	}

	return encodeValue(doc)
}

func encodeValue(v any) []byte {
	encoded, err := json.Marshal(v)
	if err == nil {
		return encoded
	}

	fallback, _ := json.Marshal(fmt.Sprintf("%v", v))

	return fallback
}
