// Command lanfc wires the compiler/container/disassembler/decompiler
// pipeline together for manual inspection: compile a built-in sample ANF
// program, write its container form, and optionally disassemble it or
// list its interned symbol names through the AST decompiler. There is no surface lexer/parser in this module
// (spec.md treats those as external collaborators), so lanfc's inputs are
// either a named built-in sample or a previously encoded container file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"lanf/anf"
	"lanf/ast"
	"lanf/compiler"
	"lanf/container"
	"lanf/decompile"
	"lanf/disasm"
	"lanf/intern"
)

var (
	sampleName = flag.String("sample", "countdown", "built-in sample program to compile: countdown, and-or, closure")
	outPath    = flag.String("o", "", "write the encoded container to this file instead of stdout")
	disasmFlag = flag.Bool("disasm", false, "disassemble the compiled (or loaded) container")
	decompFlag = flag.Bool("decompile", false, "print the compiled (or loaded) container's interned symbol names, one per line, via the AST decompiler")
	loadPath   = flag.String("load", "", "load a previously encoded container instead of compiling a sample")
	verbose    = flag.Bool("v", false, "enable debug-level compiler logging")
)

func main() {
	flag.Parse()

	log := zerolog.Nop()
	if *verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	if err := run(log); err != nil {
		fmt.Fprintln(os.Stderr, "lanfc:", err)
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	var loaded *container.Loaded
	var data []byte

	if *loadPath != "" {
		raw, err := os.ReadFile(*loadPath)
		if err != nil {
			return err
		}
		l, err := container.Decode(raw)
		if err != nil {
			return err
		}
		loaded, data = l, raw
	} else {
		prog, err := sample(*sampleName)
		if err != nil {
			return err
		}
		res, err := compiler.Compile(prog, compiler.Options{Logger: log})
		if err != nil {
			return err
		}
		encoded, err := container.Encode(res, container.Options{})
		if err != nil {
			return err
		}
		l, err := container.Decode(encoded)
		if err != nil {
			return err
		}
		loaded, data = l, encoded
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			return err
		}
	}

	if *disasmFlag {
		text, err := disasm.Disassemble(loaded)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}

	if *decompFlag {
		fmt.Println(decompileLoaded(loaded))
	}

	if *outPath == "" && !*disasmFlag && !*decompFlag {
		fmt.Printf("compiled %d instructions, %d symbols, %d constants (pass -disasm, -decompile or -o to see more)\n",
			len(loaded.Instructions), loaded.Interns.Len(), loaded.Pool.Len())
	}

	return nil
}

// decompileLoaded renders every name in the loaded intern table as an
// identifier through decompile.AST, one per line, in id order. It does not
// reconstruct the program's ANF or source text from the instruction
// stream.
func decompileLoaded(l *container.Loaded) string {
	out := ""
	for _, name := range l.Interns.Names() {
		out += decompile.AST(ast.Id(name), decompile.DefaultOptions()) + "\n"
	}
	return out
}

// sample builds one of a few hand-written ANF programs, standing in for
// what a surface parser would otherwise hand to anf.Lower.
func sample(name string) (*anf.Program, error) {
	switch name {
	case "countdown":
		return countdownSample(), nil
	case "and-or":
		return andOrSample(), nil
	case "closure":
		return closureSample(), nil
	default:
		return nil, fmt.Errorf("unknown sample %q", name)
	}
}

// countdownSample builds (let n 3 (if n n 0)), exercising LET, IF and
// variable load/store.
func countdownSample() *anf.Program {
	surface := ast.SExpr(
		ast.Id("let"), ast.Id("n"),
		ast.Lit(ast.Token{Kind: ast.Num, Text: "3"}),
		ast.SExpr(ast.Id("if"), ast.Id("n"), ast.Id("n"), ast.Lit(ast.Token{Kind: ast.Num, Text: "0"})),
	)
	return toProgram("countdown", surface)
}

// andOrSample builds (and (or x y) z), exercising macro expansion for two
// different surface forms in one tree.
func andOrSample() *anf.Program {
	surface := ast.SExpr(
		ast.Id("and"),
		ast.SExpr(ast.Id("or"), ast.Id("x"), ast.Id("y")),
		ast.Id("z"),
	)
	return toProgram("and-or", surface)
}

// closureSample builds ((lambda (x) x) 1), exercising MAKE_CLOSURE and a
// tail call through the resulting closure.
func closureSample() *anf.Program {
	surface := ast.SExpr(
		ast.SExpr(ast.Id("lambda"), ast.SExpr(ast.Id("x")), ast.Id("x")),
		ast.Lit(ast.Token{Kind: ast.Num, Text: "1"}),
	)
	return toProgram("closure", surface)
}

func toProgram(name string, surface *ast.Node) *anf.Program {
	lowered, err := anf.Lower(surface, intern.New())
	if err != nil {
		// Every sample above is hand-verified syntactically well-formed;
		// a lowering failure here is a bug in this file, not user input.
		panic(err)
	}
	return &anf.Program{Name: name, Body: lowered}
}
