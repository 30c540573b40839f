package codegen

import (
	"testing"
)

func TestAssignAndWrite(t *testing.T) {
	out := compileAndRun(t, "IS x BEGIN x := 42; WRITE x; END")
	assertOut(t, out, 42)
}

func TestArithmetic(t *testing.T) {
	out := compileAndRun(t, "IS x BEGIN x := 6 + 7; WRITE x; x := 20 - 3; WRITE x; x := 20 - 30; WRITE x; END")
	assertOut(t, out, 13, 17, 0) // saturating subtraction clamps at zero
}

func TestMultiplyDivideModulo(t *testing.T) {
	out := compileAndRun(t, `
		IS a, b, r BEGIN
			a := 6; b := 7; r := a * b; WRITE r;
			a := 20; b := 3; r := a / b; WRITE r;
			a := 20; b := 3; r := a % b; WRITE r;
			a := 5; b := 0; r := a / b; WRITE r;
			a := 5; b := 0; r := a % b; WRITE r;
		END
	`)
	assertOut(t, out, 42, 6, 2, 0, 0)
}

func TestReadAndEcho(t *testing.T) {
	out := compileAndRun(t, "IS x BEGIN READ x; WRITE x; END", 99)
	assertOut(t, out, 99)
}

func TestIfAllSixComparisons(t *testing.T) {
	cases := []struct {
		op   string
		a, b uint64
		want uint64
	}{
		{"=", 3, 3, 1}, {"=", 3, 4, 0},
		{"!=", 3, 4, 1}, {"!=", 3, 3, 0},
		{">", 5, 3, 1}, {">", 3, 5, 0},
		{"<", 3, 5, 1}, {"<", 5, 3, 0},
		{">=", 3, 3, 1}, {">=", 2, 3, 0},
		{"<=", 3, 3, 1}, {"<=", 3, 2, 0},
	}
	for _, c := range cases {
		src := "IS a, b BEGIN a := " + itoa(c.a) + "; b := " + itoa(c.b) +
			"; IF a " + c.op + " b THEN WRITE 1; ELSE WRITE 0; ENDIF END"
		out := compileAndRun(t, src)
		assertOut(t, out, c.want)
	}
}

func TestWhileLoop(t *testing.T) {
	out := compileAndRun(t, `
		IS x, sum BEGIN
			x := 0; sum := 0;
			WHILE x < 5 DO
				sum := sum + x;
				x := x + 1;
			ENDWHILE
			WRITE sum;
		END
	`)
	assertOut(t, out, 0+1+2+3+4)
}

func TestRepeatLoop(t *testing.T) {
	out := compileAndRun(t, `
		IS x BEGIN
			x := 0;
			REPEAT
				x := x + 1;
			UNTIL x = 5;
			WRITE x;
		END
	`)
	assertOut(t, out, 5)
}

func TestArraysFixedAndVariableIndex(t *testing.T) {
	out := compileAndRun(t, `
		IS arr[5], i BEGIN
			arr[0] := 10;
			arr[1] := 20;
			i := 1;
			WRITE arr[0];
			WRITE arr[i];
		END
	`)
	assertOut(t, out, 10, 20)
}

func TestProcedureCallByReference(t *testing.T) {
	out := compileAndRun(t, `
		PROCEDURE addone(x) IN
			x := x + 1;
		END;
		IS n BEGIN
			n := 4;
			CALL addone(n);
			WRITE n;
		END
	`)
	assertOut(t, out, 5)
}

func TestProcedureCallWithArrayFormal(t *testing.T) {
	out := compileAndRun(t, `
		PROCEDURE fill(T arr, v) IN
			arr[0] := v;
			arr[1] := v;
		END;
		IS data[3], seven BEGIN
			seven := 7;
			CALL fill(data, seven);
			WRITE data[0];
			WRITE data[1];
		END
	`)
	assertOut(t, out, 7, 7)
}

func TestMultipleCallsToSameProcedureShareLocals(t *testing.T) {
	out := compileAndRun(t, `
		PROCEDURE triple(x) IS tmp IN
			tmp := x + x;
			x := tmp + x;
		END;
		IS a, b BEGIN
			a := 2; CALL triple(a); WRITE a;
			b := 5; CALL triple(b); WRITE b;
		END
	`)
	assertOut(t, out, 6, 15)
}

func TestUndeclaredVariableIsAnError(t *testing.T) {
	prog, err := mustParse(t, "BEGIN missing := 1; END")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e, err := New(prog)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	if err := e.ConstructMain(prog); err == nil {
		t.Fatalf("expected an undeclared-variable error")
	}
}

func TestRecursiveCallIsRejected(t *testing.T) {
	prog, err := mustParse(t, `
		PROCEDURE loop(x) IN
			CALL loop(x);
		END;
		IS y BEGIN
			CALL loop(y);
		END
	`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e, err := New(prog)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	if err := e.ConstructMain(prog); err == nil {
		t.Fatalf("expected a recursive-call error")
	}
}

func TestWrongNumberOfArgumentsIsRejected(t *testing.T) {
	prog, err := mustParse(t, `
		PROCEDURE needs_two(x, y) IN
			x := y;
		END;
		IS a BEGIN
			CALL needs_two(a);
		END
	`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e, err := New(prog)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	if err := e.ConstructMain(prog); err == nil {
		t.Fatalf("expected a wrong-number-of-arguments error")
	}
}

func TestDuplicateProcedureDeclarationIsRejected(t *testing.T) {
	prog, err := mustParse(t, `
		PROCEDURE p(x) IN x := x; END;
		PROCEDURE p(y) IN y := y; END;
		BEGIN END
	`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := New(prog); err == nil {
		t.Fatalf("expected a duplicate-procedure-declaration error")
	}
}

func TestIndexOutOfBoundsIsRejected(t *testing.T) {
	prog, err := mustParse(t, "IS arr[3] BEGIN arr[5] := 1; END")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e, err := New(prog)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	if err := e.ConstructMain(prog); err == nil {
		t.Fatalf("expected an index-out-of-bounds error")
	}
}

func TestMacroLengthsMatchTheLengthContract(t *testing.T) {
	if got := Len(macroMul()); got != 20 {
		t.Fatalf("macroMul: got %d expanded lines, want 20", got)
	}
	if got := Len(macroDiv()); got != 25 {
		t.Fatalf("macroDiv: got %d expanded lines, want 25", got)
	}
	if got := Len(macroMod()); got != 26 {
		t.Fatalf("macroMod: got %d expanded lines, want 26", got)
	}
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
