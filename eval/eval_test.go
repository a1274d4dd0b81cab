package eval

import "testing"

type mapRow map[string]Value

func (m mapRow) AttrValue(name string) (Value, error) {
	v, ok := m[name]
	if !ok {
		return Value{}, errAttrNotFound(name)
	}
	return v, nil
}

type errAttrNotFound string

func (e errAttrNotFound) Error() string { return "no such attribute: " + string(e) }

func TestEvalNilExprMatchesEverything(t *testing.T) {
	v, err := Eval(mapRow{}, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.B {
		t.Fatalf("expected nil expr to evaluate true")
	}
}

func TestEvalComparison(t *testing.T) {
	row := mapRow{"id": NewInt(8)}

	expr := Compare(OpGt, "id", NewInt(7))
	v, err := Eval(row, expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.B {
		t.Fatalf("expected id > 7 to be true for id=8")
	}

	expr2 := Compare(OpGt, "id", NewInt(10))
	v2, err := Eval(row, expr2)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v2.B {
		t.Fatalf("expected id > 10 to be false for id=8")
	}
}

func TestEvalAndOr(t *testing.T) {
	row := mapRow{"id": NewInt(8), "name": NewString("bob")}

	expr := And(
		Compare(OpGt, "id", NewInt(5)),
		Compare(OpEq, "name", NewString("bob")),
	)
	v, err := Eval(row, expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.B {
		t.Fatalf("expected AND to be true")
	}

	orExpr := Or(
		Compare(OpGt, "id", NewInt(10)),
		Compare(OpEq, "name", NewString("bob")),
	)
	v, err = Eval(row, orExpr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.B {
		t.Fatalf("expected OR to be true when only one side holds")
	}
}

func TestEvalTypeMismatch(t *testing.T) {
	row := mapRow{"id": NewInt(8)}
	expr := Compare(OpEq, "id", NewString("8"))
	if _, err := Eval(row, expr); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}
