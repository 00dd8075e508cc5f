package retention

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// undefined is the special comparable-only-by-==/!= value yielded by a
// dotted field reference that isn't present in the record (§4.6).
type undefined struct{}

// Record is one audit-trail-shaped value the expression is evaluated
// against. Dotted field references are resolved by walking nested maps.
type Record map[string]any

func (r Record) lookup(field string) any {
	parts := strings.Split(field, ".")
	var cur any = map[string]any(r)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return undefined{}
		}
		v, ok := m[p]
		if !ok {
			return undefined{}
		}
		cur = v
	}
	return cur
}

// Eval reports whether record matches q's boolean expression. Unknown
// field access is never a syntax or evaluation error — it simply yields
// undefined, which only ever compares equal to itself via == or !=.
func Eval(q *Query, record Record) (bool, error) {
	return evalOr(q.Expr, record)
}

func evalOr(e *OrExpr, r Record) (bool, error) {
	v, err := evalAnd(e.Left, r)
	if err != nil {
		return false, err
	}
	for _, rhs := range e.Right {
		if v {
			return true, nil
		}
		v, err = evalAnd(rhs, r)
		if err != nil {
			return false, err
		}
	}
	return v, nil
}

func evalAnd(e *AndExpr, r Record) (bool, error) {
	v, err := evalNot(e.Left, r)
	if err != nil {
		return false, err
	}
	for _, rhs := range e.Right {
		if !v {
			return false, nil
		}
		v, err = evalNot(rhs, r)
		if err != nil {
			return false, err
		}
	}
	return v, nil
}

func evalNot(e *NotExpr, r Record) (bool, error) {
	var v bool
	var err error
	switch {
	case e.Comparison != nil:
		v, err = evalComparison(e.Comparison, r)
	case e.Sub != nil:
		v, err = evalOr(e.Sub, r)
	default:
		return false, fmt.Errorf("empty expression")
	}
	if err != nil {
		return false, err
	}
	if e.Negate {
		return !v, nil
	}
	return v, nil
}

func evalComparison(c *Comparison, r Record) (bool, error) {
	lhs := r.lookup(c.Field)
	rhs := literal(c.Value)

	if _, lUndef := lhs.(undefined); lUndef {
		switch c.Op {
		case "==":
			_, rUndef := rhs.(undefined)
			return rUndef, nil
		case "!=":
			_, rUndef := rhs.(undefined)
			return !rUndef, nil
		default:
			return false, nil
		}
	}

	switch c.Op {
	case "==":
		return compareEq(lhs, rhs), nil
	case "!=":
		return !compareEq(lhs, rhs), nil
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if lok && rok {
		switch c.Op {
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}

	ls, lsok := lhs.(string)
	rs, rsok := rhs.(string)
	if lsok && rsok {
		switch c.Op {
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}

	return false, fmt.Errorf("incomparable operands for %q", c.Field)
}

func literal(v Value) any {
	switch {
	case v.Str != nil:
		return *v.Str
	case v.Num != nil:
		return *v.Num
	case v.Int != nil:
		return float64(*v.Int)
	default:
		return undefined{}
	}
}

func compareEq(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Apply filters records by q's expression, keeping an artifact when it
// matches directly or is transitively referenced (via refs) by another
// kept artifact, then applies the LIMIT/ORDER BY clause if present.
func Apply(q *Query, records []Record, idField string, refs func(Record) []string) ([]Record, error) {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		if id, ok := r[idField].(string); ok {
			byID[id] = r
		}
	}

	kept := make(map[string]bool)
	for _, r := range records {
		ok, err := Eval(q, r)
		if err != nil {
			return nil, err
		}
		if ok {
			id, _ := r[idField].(string)
			markTransitive(id, byID, refs, kept)
		}
	}

	var out []Record
	for _, r := range records {
		id, _ := r[idField].(string)
		if kept[id] {
			out = append(out, r)
		}
	}

	if q.Limit != nil {
		// A bare LIMIT with no ORDER BY defaults to "most recent N" by
		// build.date (§8 scenario D: "leaves exactly three artifacts -
		// the three with the greatest build.date"), rather than an
		// unspecified scan order.
		orderBy, dir := q.Limit.OrderBy, q.Limit.Dir
		if orderBy == "" {
			orderBy, dir = "build.date", "DESC"
		}
		sort.SliceStable(out, func(i, j int) bool {
			vi, vj := out[i].lookup(orderBy), out[j].lookup(orderBy)
			less := lessValue(vi, vj)
			if dir == "DESC" {
				return !less
			}
			return less
		})
		if int64(len(out)) > q.Limit.N {
			out = out[:q.Limit.N]
		}
	}
	return out, nil
}

// lessValue orders two lookup results numerically when both parse as
// numbers, falling back to string comparison otherwise.
func lessValue(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func markTransitive(id string, byID map[string]Record, refs func(Record) []string, kept map[string]bool) {
	if id == "" || kept[id] {
		return
	}
	kept[id] = true
	r, ok := byID[id]
	if !ok {
		return
	}
	for _, ref := range refs(r) {
		markTransitive(ref, byID, refs, kept)
	}
}
