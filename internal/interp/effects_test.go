package interp

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-lisplang/internal/value"
)

// accumulator is the canonical stateful handler program: add sums its
// arguments into the handler state and continues with unit.
const accumulator = `
[let add [declareEffectfulFunction [quote add] 1]
[handle [ignore [add 5] [add 7]]
        [list [[list [[quote add] [lambda [s n] [continue unit [sum s n]]]]]]]
        0]]`

func TestHandleAccumulatesState(t *testing.T) {
	result, _, in := runProgram(t, accumulator)

	pair, ok := result.(value.List)
	if !ok || len(pair.Items) != 2 {
		t.Fatalf("got %s, want a [result finalState] pair", result.ErrorDump())
	}
	if pair.Items[0].Kind() != value.KindUnit {
		t.Errorf("body result = %s, want unit", pair.Items[0].ErrorDump())
	}
	assertNumber(t, pair.Items[1], 12)

	if in.LiveHandlerStates() != 0 {
		t.Errorf("%d handler states still registered after the handle block", in.LiveHandlerStates())
	}
}

func TestHandleBodyResultFlowsThrough(t *testing.T) {
	result, _, _ := runProgram(t, `
[let ask [declareEffectfulFunction [quote ask] 1]
[handle [sum [ask unit] [ask unit]]
        [list [[list [[quote ask] [lambda [s q] [continue s [sum s 1]]]]]]]
        10]]`)

	pair := result.(value.List)
	// First ask sees 10, second sees 11; final state 12.
	assertNumber(t, pair.Items[0], 21)
	assertNumber(t, pair.Items[1], 12)
}

func TestStopShortCircuits(t *testing.T) {
	result, output, in := runProgram(t, `
[let eff [declareEffectfulFunction [quote eff] 1]
[handle [ignore [eff 1] [ignore [print "after"] [eff 2]]]
        [list [[list [[quote eff] [lambda [s n] [stop 42 s]]]]]]
        7]]`)

	pair := result.(value.List)
	assertNumber(t, pair.Items[0], 42)
	assertNumber(t, pair.Items[1], 7)
	if output != "" {
		t.Errorf("the rest of the body ran after stop: output %q", output)
	}
	if in.LiveHandlerStates() != 0 {
		t.Errorf("%d handler states still registered after stop", in.LiveHandlerStates())
	}
}

func TestInnerHandlerDelegatesToOuter(t *testing.T) {
	result, _, _ := runProgram(t, `
[let outerEff [declareEffectfulFunction [quote outerEff] 1]
[let innerEff [declareEffectfulFunction [quote innerEff] 1]
[handle
	[handle [sum [innerEff unit] [outerEff unit]]
	        [list [[list [[quote innerEff] [lambda [s x] [continue 1 s]]]]]]
	        unit]
	[list [[list [[quote outerEff] [lambda [s x] [continue 2 s]]]]]]
	unit]]]`)

	// The inner handle returns [1+2 unit]; the outer wraps it again.
	pair := result.(value.List)
	innerPair := pair.Items[0].(value.List)
	assertNumber(t, innerPair.Items[0], 3)
}

func TestUnhandledEffectIsFatal(t *testing.T) {
	err := runExpectError(t, `
[let eff [declareEffectfulFunction [quote eff] 1]
[eff 1]]`)
	if !strings.Contains(err.Error(), "no handler") {
		t.Errorf("error %q does not mention the missing handler", err.Error())
	}
}

func TestHandlerBodyMustReturnContinueStop(t *testing.T) {
	err := runExpectError(t, `
[let eff [declareEffectfulFunction [quote eff] 1]
[handle [eff 1]
        [list [[list [[quote eff] [lambda [s n] [sum n 4]]]]]]
        0]]`)
	if !strings.Contains(err.Error(), "continue or stop") {
		t.Errorf("error %q does not mention continue/stop", err.Error())
	}
}

func TestDeclareEffectfulValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"zero arity", "[declareEffectfulFunction [quote e] 0]", "1 or higher"},
		{"fractional arity", "[declareEffectfulFunction [quote e] 1.5]", "whole number"},
		{"name not quoted", "[declareEffectfulFunction 1 1]", "quoted name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runExpectError(t, tt.src)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestMalformedHandlerPairs(t *testing.T) {
	err := runExpectError(t, `[handle 1 [list [[list [1 2]]]] 0]`)
	if !strings.Contains(err.Error(), "key value pairs") {
		t.Errorf("error %q does not mention the pair shape", err.Error())
	}
}

func TestNestedHandlesReleaseStatesInOrder(t *testing.T) {
	_, _, in := runProgram(t, `
[let e [declareEffectfulFunction [quote e] 1]
[handle
	[handle [e unit]
	        [list [[list [[quote e] [lambda [s x] [continue s [sum s 1]]]]]]]
	        0]
	[list []]
	0]]`)
	if in.LiveHandlerStates() != 0 {
		t.Errorf("%d handler states left registered", in.LiveHandlerStates())
	}
}

func TestStopAcrossNestedHandleReleasesInnerState(t *testing.T) {
	// The outer handler stops while an inner handle block is still live;
	// the inner block's state entry must not leak.
	result, _, in := runProgram(t, `
[let outerEff [declareEffectfulFunction [quote outerEff] 1]
[handle
	[handle [outerEff 1]
	        [list []]
	        5]
	[list [[list [[quote outerEff] [lambda [s n] [stop 99 s]]]]]]
	0]]`)
	pair := result.(value.List)
	assertNumber(t, pair.Items[0], 99)
	assertNumber(t, pair.Items[1], 0)
	if in.LiveHandlerStates() != 0 {
		t.Errorf("%d handler states leaked across the stopped inner block", in.LiveHandlerStates())
	}
}

func TestEffectsInsideLambdaResolveThroughCaller(t *testing.T) {
	// The closure is created outside the handle block, the handler chain
	// is the caller's.
	result, _, _ := runProgram(t, `
[let tick [declareEffectfulFunction [quote tick] 1]
[let f [lambda [x] [tick x]]
[handle [f 5]
        [list [[list [[quote tick] [lambda [s n] [continue n [sum s 1]]]]]]]
        0]]]`)
	pair := result.(value.List)
	assertNumber(t, pair.Items[0], 5)
	assertNumber(t, pair.Items[1], 1)
}
