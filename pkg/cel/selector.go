package cel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unijord/unitrigger/pkg/trigger"
)

var propertyMaps = []trigger.EventKind{
	trigger.EventAssignedNodeProperties,
	trigger.EventRemovedNodeProperties,
	trigger.EventAssignedRelationshipProperties,
	trigger.EventRemovedRelationshipProperties,
}

// SelectorSource renders the structural clauses of a selector as one
// boolean CEL expression joined with &&. The free-form condition is not
// part of it; CompileSelector compiles that on its own. A selector with
// no structural clauses renders as "true".
func SelectorSource(sel trigger.Selector) string {
	var clauses []string

	if len(sel.Events) > 0 {
		parts := make([]string, len(sel.Events))
		for i, e := range sel.Events {
			parts[i] = fmt.Sprintf("size(%s) > 0", e)
		}
		clauses = append(clauses, "("+strings.Join(parts, " || ")+")")
	}
	if len(sel.AssignedLabels) > 0 {
		clauses = append(clauses, fmt.Sprintf("%s.exists(l, l in %s)", listLiteral(sel.AssignedLabels), trigger.EventAssignedLabels))
	}
	if len(sel.RemovedLabels) > 0 {
		clauses = append(clauses, fmt.Sprintf("%s.exists(l, l in %s)", listLiteral(sel.RemovedLabels), trigger.EventRemovedLabels))
	}
	if len(sel.RelationshipTypes) > 0 {
		clauses = append(clauses, fmt.Sprintf("(%s + %s).exists(r, r.type in %s)",
			trigger.EventCreatedRelationships, trigger.EventDeletedRelationships, listLiteral(sel.RelationshipTypes)))
	}
	if len(sel.PropertyKeys) > 0 {
		in := make([]string, len(propertyMaps))
		for i, m := range propertyMaps {
			in[i] = "k in " + string(m)
		}
		clauses = append(clauses, fmt.Sprintf("%s.exists(k, %s)", listLiteral(sel.PropertyKeys), strings.Join(in, " || ")))
	}
	if len(clauses) == 0 {
		return "true"
	}
	return strings.Join(clauses, " && ")
}

func listLiteral(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// CompileSelector validates and compiles sel. The condition is compiled
// as a separate program and must type-check as bool by itself.
func (c *Compiler) CompileSelector(sel trigger.Selector) (*CompiledExpr, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	expr, err := c.CompileBool(SelectorSource(sel))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trigger.ErrInvalidSelector, err)
	}
	if cond := strings.TrimSpace(sel.Condition); cond != "" {
		ce, err := c.CompileBool(cond)
		if err != nil {
			return nil, fmt.Errorf("%w: condition: %v", trigger.ErrInvalidSelector, err)
		}
		expr.and = append(expr.and, ce)
	}
	return expr, nil
}
