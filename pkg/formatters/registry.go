// Package formatters shapes source-system payloads before the raw tier
// stores them. The registry is an explicit table keyed by (source system,
// entity kind), built at startup and handed to the ingestion service by
// reference; there is no global mutable state and no runtime discovery.
package formatters

import (
	"fmt"
	"strings"

	"github.com/saudelink/platform/pkg/refdata"
)

const (
	EntityPatientRecord    = "patient-record"
	EntityPatientCondition = "patient-condition"
)

// Formatter normalizes one source payload. The payload stays opaque to the
// core: formatters only do source-specific hygiene, never schema mapping.
type Formatter func(payload map[string]interface{}) (map[string]interface{}, error)

type key struct {
	System string
	Entity string
}

type Registry struct {
	table map[key]Formatter
}

func NewRegistry() *Registry {
	return &Registry{table: make(map[key]Formatter)}
}

// Register binds a formatter to a (system, entity) pair. Unknown systems or
// entities and duplicate registrations are construction-time errors.
func (r *Registry) Register(system, entity string, f Formatter) error {
	if err := refdata.ValidateSourceSystem(system); err != nil {
		return err
	}
	if entity != EntityPatientRecord && entity != EntityPatientCondition {
		return fmt.Errorf("unknown entity kind %q", entity)
	}
	if f == nil {
		return fmt.Errorf("nil formatter for (%s, %s)", system, entity)
	}
	k := key{System: system, Entity: entity}
	if _, exists := r.table[k]; exists {
		return fmt.Errorf("formatter already registered for (%s, %s)", system, entity)
	}
	r.table[k] = f
	return nil
}

func (r *Registry) Resolve(system, entity string) (Formatter, bool) {
	f, ok := r.table[key{System: system, Entity: entity}]
	return f, ok
}

// Default builds the registry for the known source systems. Every
// (system, entity) pair gets at least the generic sanitizer.
func Default() (*Registry, error) {
	r := NewRegistry()
	register := func(system, entity string, f Formatter) error {
		return r.Register(system, entity, f)
	}

	for _, entity := range []string{EntityPatientRecord, EntityPatientCondition} {
		if err := register("vitacare", entity, Sanitize); err != nil {
			return nil, err
		}
		if err := register("vitai", entity, Sanitize); err != nil {
			return nil, err
		}
		if err := register("smsrio", entity, Chain(LowercaseKeys, Sanitize)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Chain composes formatters left to right.
func Chain(fs ...Formatter) Formatter {
	return func(payload map[string]interface{}) (map[string]interface{}, error) {
		var err error
		for _, f := range fs {
			payload, err = f(payload)
			if err != nil {
				return nil, err
			}
		}
		return payload, nil
	}
}

// Sanitize trims string values and drops keys whose value is nil or an
// empty string, recursively. Source systems routinely pad fields or send
// placeholder empties that would otherwise churn fingerprints downstream.
func Sanitize(payload map[string]interface{}) (map[string]interface{}, error) {
	if payload == nil {
		return nil, fmt.Errorf("nil payload")
	}
	return sanitizeMap(payload), nil
}

func sanitizeMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch value := v.(type) {
		case nil:
			continue
		case string:
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			out[k] = trimmed
		case map[string]interface{}:
			nested := sanitizeMap(value)
			if len(nested) == 0 {
				continue
			}
			out[k] = nested
		case []interface{}:
			items := make([]interface{}, 0, len(value))
			for _, item := range value {
				if nested, ok := item.(map[string]interface{}); ok {
					if cleaned := sanitizeMap(nested); len(cleaned) > 0 {
						items = append(items, cleaned)
					}
					continue
				}
				if item != nil {
					items = append(items, item)
				}
			}
			if len(items) == 0 {
				continue
			}
			out[k] = items
		default:
			out[k] = v
		}
	}
	return out
}

// LowercaseKeys folds top-level keys to lower case. The smsrio feed is
// inconsistent about key casing between extractions.
func LowercaseKeys(payload map[string]interface{}) (map[string]interface{}, error) {
	if payload == nil {
		return nil, fmt.Errorf("nil payload")
	}
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[strings.ToLower(k)] = v
	}
	return out, nil
}
