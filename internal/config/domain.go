// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
)

// Condition is one clause of an Odoo search domain: field, operator, value.
// Domains are declared as JSON triples in the instance configuration and
// parsed into this closed grammar; arbitrary expression evaluation is
// deliberately unsupported.
type Condition struct {
	Field string
	Op    string
	Value any
}

// Domain is an implicit-AND list of conditions.
type Domain []Condition

var allowedOps = map[string]bool{
	"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"like": true, "ilike": true, "not like": true, "not ilike": true,
	"in": true, "not in": true, "=like": true, "=ilike": true,
	"child_of": true, "parent_of": true,
}

// ParseDomain converts raw JSON triples ([["field", "op", value], ...])
// into a Domain, rejecting unknown operators and malformed clauses.
func ParseDomain(raw []any) (Domain, error) {
	var d Domain
	for i, clause := range raw {
		triple, ok := clause.([]any)
		if !ok || len(triple) != 3 {
			return nil, fmt.Errorf("domain clause %d: expected [field, op, value] triple", i)
		}
		field, ok := triple[0].(string)
		if !ok || field == "" {
			return nil, fmt.Errorf("domain clause %d: field must be a non-empty string", i)
		}
		op, ok := triple[1].(string)
		if !ok || !allowedOps[op] {
			return nil, fmt.Errorf("domain clause %d: unsupported operator %v", i, triple[1])
		}
		d = append(d, Condition{Field: field, Op: op, Value: triple[2]})
	}
	return d, nil
}

// AsList serializes the domain back to the wire shape Odoo expects.
func (d Domain) AsList() []any {
	out := make([]any, len(d))
	for i, c := range d {
		out[i] = []any{c.Field, c.Op, c.Value}
	}
	return out
}

// MarshalJSON writes the domain in its triple wire shape so saved
// configurations load back.
func (d Domain) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.AsList())
}

// UnmarshalJSON lets Domain fields decode directly from configuration.
func (d *Domain) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDomain(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
