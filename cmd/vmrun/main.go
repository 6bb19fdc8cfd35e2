// Command vmrun hand-assembles a tiny bytecode program (standing in for
// the external compiler this core does not implement) and runs it
// through the dispatch loop, printing the resulting value. It exists to
// exercise the core end-to-end outside of unit tests.
package main

import (
	"context"
	"fmt"
	"os"

	"ecmavm/pkg/bytecode"
	"ecmavm/pkg/vm"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "vmrun",
		Usage: "run a hand-assembled bytecode program against the VM core",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "capture a backtrace on uncaught errors"},
			&cli.BoolFlag{Name: "quiet", Usage: "use the line-only ReferenceError message format"},
			&cli.StringFlag{Name: "program", Value: "add", Usage: "which built-in demo program to run: add, throw, typeof-null"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vmrun: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := vm.Config{
		Debug: cmd.Bool("debug"),
		Quiet: cmd.Bool("quiet"),
	}
	machine := vm.NewVM(cfg)
	fmt.Printf("vm instance %s\n", machine.ID)

	chunk, frame := demoProgram(cmd.String("program"))
	if chunk == nil {
		return fmt.Errorf("unknown -program %q", cmd.String("program"))
	}

	status, err := machine.Interpret(chunk, frame)
	if err != nil {
		fmt.Println(err)
		if cfg.Debug {
			for _, e := range machine.Backtrace() {
				fmt.Printf("  at %s (%s:%d)\n", e.Function, e.File, e.Line)
			}
		}
		return nil
	}
	display, dispErr := vm.ToString(machine, machine.Retval())
	if dispErr != vm.StatusOK {
		display = machine.Retval().Kind.String()
	}
	fmt.Printf("status=%v retval=%s (%s)\n", status, display, machine.Retval().Kind)
	return nil
}

// demoProgram builds one of a few canned chunk/frame pairs. Literal
// operands have nowhere to come from but a preloaded LOCAL slot: this
// core has no LOAD_CONST opcode, since encoding literals into the
// instruction stream is the external compiler's job.
func demoProgram(name string) (*bytecode.Chunk, *vm.Frame) {
	local := func(i uint32) bytecode.OperandDescriptor {
		return bytecode.OperandDescriptor{Scope: bytecode.ScopeLocal, Index: i}
	}

	switch name {
	case "add":
		chunk := &bytecode.Chunk{Code: []bytecode.Instruction{
			{Op: bytecode.OpAddition, Operand2: local(0), Operand3: local(1), Dest: local(2)},
			{Op: bytecode.OpReturn, Operand2: local(2)},
		}}
		return chunk, scriptFrame(vm.Number(19), vm.Number(23), vm.Undefined)

	case "throw":
		chunk := &bytecode.Chunk{Code: []bytecode.Instruction{
			{Op: bytecode.OpThrow, Operand2: local(0)},
		}}
		return chunk, scriptFrame(vm.String("uncaught from vmrun"))

	case "typeof-null":
		chunk := &bytecode.Chunk{Code: []bytecode.Instruction{
			{Op: bytecode.OpTypeof, Operand2: local(0), Dest: local(1)},
			{Op: bytecode.OpReturn, Operand2: local(1)},
		}}
		return chunk, scriptFrame(vm.Null, vm.Undefined)

	default:
		return nil, nil
	}
}

// scriptFrame builds a top-level activation frame with locals preloaded
// to the given values, standing in for what a compiler-emitted constant
// load would otherwise populate.
func scriptFrame(locals ...vm.Value) *vm.Frame {
	f := &vm.Frame{File: "vmrun"}
	f.Scopes[bytecode.ScopeArguments] = &vm.Scope{Kind: bytecode.ScopeArguments, Slots: []vm.Value{vm.Undefined}}
	f.Scopes[bytecode.ScopeLocal] = &vm.Scope{Kind: bytecode.ScopeLocal, Slots: locals}
	return f
}
