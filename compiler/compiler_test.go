package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/runtime"
)

func TestCompileSimpleProgram(t *testing.T) {
	prog, err := Compile(`%let x = 1;`, runtime.DefaultCompileOptions())
	require.NoError(t, err)
	require.Empty(t, prog.Functions)
}

func TestCompileCollectsFunctions(t *testing.T) {
	prog, err := Compile(`%func add(a,b); %return a + b; %endfunc;`, runtime.DefaultCompileOptions())
	require.NoError(t, err)
	require.Contains(t, prog.Functions, "add")
}

func TestCompileDuplicateFunctionFails(t *testing.T) {
	src := `%func f(); %return 1; %endfunc; %func f(); %return 2; %endfunc;`
	_, err := Compile(src, runtime.DefaultCompileOptions())
	require.Error(t, err)
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
}

func TestCompileRejectsUserFunctionsWhenDisallowed(t *testing.T) {
	opts := runtime.DefaultCompileOptions()
	opts.AllowUserFunctions = false
	_, err := Compile(`%func f(); %return 1; %endfunc;`, opts)
	require.Error(t, err)
}

func TestCompileSurfacesParseErrors(t *testing.T) {
	_, err := Compile(`%let x = 1`, runtime.DefaultCompileOptions())
	require.Error(t, err)
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
}

func TestCompileLibraryRequiresFunctionsOnly(t *testing.T) {
	_, err := CompileLibrary(`%let x = 1;`)
	require.Error(t, err)
}

func TestCompileLibraryRequiresAtLeastOneFunction(t *testing.T) {
	_, err := CompileLibrary(``)
	require.Error(t, err)
}

func TestCompileLibraryOK(t *testing.T) {
	prog, err := CompileLibrary(`%func double(x); %return x * 2; %endfunc;`)
	require.NoError(t, err)
	require.Contains(t, prog.Functions, "double")
}

func TestCompileLibraryDuplicateFunctionFails(t *testing.T) {
	src := `%func f(); %return 1; %endfunc; %func f(); %return 2; %endfunc;`
	_, err := CompileLibrary(src)
	require.Error(t, err)
}
