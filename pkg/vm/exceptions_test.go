package vm

import "testing"

func TestTryStartInitializesSlots(t *testing.T) {
	f := &Frame{}
	exc, exit := Invalid, Invalid
	exc.Kind = KindString // pre-existing garbage, must be cleared
	tryStart(f, &exc, &exit, 42)

	if !exc.IsInvalid() {
		t.Errorf("tryStart should invalidate the exception slot")
	}
	if exit.Kind != KindInvalid || exit.as.number != 0 {
		t.Errorf("tryStart should set the exit slot to the normal encoding")
	}
	if f.Exception.Catch == nil || *f.Exception.Catch != 42 {
		t.Fatalf("tryStart should install the catch PC")
	}
}

func TestTryBreakDoesNotOverwriteReturn(t *testing.T) {
	exit := Number(123) // simulates a prior TRY_RETURN-set exit value
	tryBreak(&exit)
	if exit.Kind != KindNumber || exit.as.number != 123 {
		t.Errorf("tryBreak must not overwrite a TRY_RETURN-set exit value, got %v", exit)
	}
}

func TestTryContinueDoesNotOverwriteReturn(t *testing.T) {
	exit := Number(456)
	tryContinue(&exit)
	if exit.Kind != KindNumber || exit.as.number != 456 {
		t.Errorf("tryContinue must not overwrite a TRY_RETURN-set exit value, got %v", exit)
	}
}

func TestTryBreakSetsExitWhenEmpty(t *testing.T) {
	exit := exitNormal()
	tryBreak(&exit)
	if exitIsValid(exit) || exit.as.number <= 0 {
		t.Errorf("tryBreak should install the break encoding, got %v", exit)
	}
}

func TestFinallyOutcomeRethrowBeatsExit(t *testing.T) {
	exc := String("boom")
	exit := exitBreak()
	outcome, v := finallyOp(&exc, &exit)
	if outcome != finallyRethrow || v.AsString() != "boom" {
		t.Errorf("a pending exception must win over a pending break, got %v %v", outcome, v)
	}
}

func TestFinallyOutcomeReturn(t *testing.T) {
	exc := Invalid
	exit := Number(77) // a TRY_RETURN-set exit value
	outcome, v := finallyOp(&exc, &exit)
	if outcome != finallyReturn || v.AsNumber() != 77 {
		t.Errorf("expected finallyReturn(77), got %v %v", outcome, v)
	}
}

func TestFinallyOutcomeBreakAndContinue(t *testing.T) {
	exc := Invalid
	brk := exitBreak()
	if outcome, _ := finallyOp(&exc, &brk); outcome != finallyBreakJump {
		t.Errorf("expected finallyBreakJump, got %v", outcome)
	}
	cont := exitContinue()
	if outcome, _ := finallyOp(&exc, &cont); outcome != finallyContinueJump {
		t.Errorf("expected finallyContinueJump, got %v", outcome)
	}
}

func TestFinallyOutcomeFallThrough(t *testing.T) {
	exc, exit := Invalid, exitNormal()
	if outcome, _ := finallyOp(&exc, &exit); outcome != finallyFallThrough {
		t.Errorf("expected finallyFallThrough, got %v", outcome)
	}
}

func TestCatchOpClearsExceptionAndEndsWithoutFinally(t *testing.T) {
	testVM := &VM{currentException: String("err")}
	f := &Frame{}
	f.pushExceptionRecord(1)

	var dst Value
	testVM.catchOp(f, &dst, true, 0)

	if dst.AsString() != "err" {
		t.Errorf("catchOp should store the in-flight exception into dst, got %v", dst)
	}
	if !testVM.currentException.IsInvalid() {
		t.Errorf("catchOp should clear the in-flight exception")
	}
	if f.Exception.Catch != nil {
		t.Errorf("catchOp with noFinallyFollows should end the try region")
	}
}

func TestCatchOpInstallsFinallyCatchWhenFinallyFollows(t *testing.T) {
	testVM := &VM{currentException: String("err")}
	f := &Frame{}
	f.pushExceptionRecord(1)

	testVM.catchOp(f, nil, false, 99)
	if f.Exception.Catch == nil || *f.Exception.Catch != 99 {
		t.Fatalf("catchOp should redirect catch to the finally entry, got %v", f.Exception.Catch)
	}
}

func TestUnwindResumesAtRegisteredCatch(t *testing.T) {
	testVM := NewVM(Config{})
	f := &Frame{}
	f.pushExceptionRecord(7)
	testVM.topFrame = f
	testVM.currentException = String("boom")

	if ok := testVM.unwind(); !ok {
		t.Fatalf("unwind should resume at the registered catch")
	}
	if f.PC != 7 {
		t.Errorf("unwind should set PC to the catch target, got %d", f.PC)
	}
}

func TestUnwindStopsAtScriptHostBoundary(t *testing.T) {
	testVM := NewVM(Config{})
	f := &Frame{Native: false}
	testVM.topFrame = f
	testVM.currentException = String("boom")

	if ok := testVM.unwind(); ok {
		t.Fatalf("unwind should report no handler found (uncaught) at the boundary")
	}
	if testVM.topFrame != nil {
		t.Errorf("the boundary frame should have been freed, topFrame = %v", testVM.topFrame)
	}
}

func TestUnwindPropagatesToCaller(t *testing.T) {
	testVM := NewVM(Config{})
	caller := &Frame{Native: false}
	caller.pushExceptionRecord(11)
	callee := &Frame{Native: false, Previous: caller}
	testVM.topFrame = callee
	testVM.currentException = String("boom")

	if ok := testVM.unwind(); !ok {
		t.Fatalf("unwind should find the caller's catch")
	}
	if testVM.topFrame != caller {
		t.Errorf("unwind should leave topFrame at the caller, got %v", testVM.topFrame)
	}
	if caller.PC != 11 {
		t.Errorf("caller.PC = %d, want 11", caller.PC)
	}
}
