package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		path string
		want GrammarFamily
	}{
		{"README.md", GrammarMarkdown},
		{"notes.MARKDOWN", GrammarMarkdown},
		{"main.prg", GrammarScript},
		{"defs.ch", GrammarScript},
		{"util.c", GrammarBrace},
		{"util.h", GrammarBrace},
		{"engine.cpp", GrammarBrace},
		{"engine.hpp", GrammarBrace},
		{"Service.cs", GrammarCSharp},
		{"app.ts", GrammarJavaScript},
		{"view.tsx", GrammarJavaScript},
		{"app.js", GrammarJavaScript},
		{"view.jsx", GrammarJavaScript},
		{"tool.py", GrammarIndent},
		{"schema.sql", GrammarRoutine},
		{"deploy.ps1", GrammarPowerShell},
		{"build.sh", GrammarShell},
		{"install.bash", GrammarShell},
		{"notes.txt", GrammarPlain},
		{"Makefile", GrammarPlain},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFile(tt.path))
		})
	}
}

func TestGrammarFamily_String(t *testing.T) {
	assert.Equal(t, "markdown", GrammarMarkdown.String())
	assert.Equal(t, "plain", GrammarPlain.String())
	assert.Equal(t, "unknown", GrammarFamily(99).String())
}

func TestDeclarationPatterns(t *testing.T) {
	tests := []struct {
		name   string
		family GrammarFamily
		line   string
		want   string
	}{
		{"prg function", GrammarScript, "FUNCTION Main()", "Main"},
		{"prg static function", GrammarScript, "  static function helper( x )", "helper"},
		{"c function", GrammarBrace, "int add(int a, int b) {", "add"},
		{"c static function", GrammarBrace, "static void reset(void){", "reset"},
		{"csharp method", GrammarCSharp, "    public async Task<int> LoadAsync(string id)", "LoadAsync"},
		{"csharp class", GrammarCSharp, "public class OrderService {", "OrderService"},
		{"ts export", GrammarJavaScript, "export async function fetchUser(id: string) {", "fetchUser"},
		{"js plain", GrammarJavaScript, "function render() {", "render"},
		{"python def", GrammarIndent, "def load(path):", "load"},
		{"python async", GrammarIndent, "    async def fetch(self):", "fetch"},
		{"sql procedure", GrammarRoutine, "CREATE PROCEDURE dbo.GetOrders", "GetOrders"},
		{"sql function lowercase", GrammarRoutine, "create function total_for(x int)", "total_for"},
		{"powershell", GrammarPowerShell, "function Get-Thing {", "Get-Thing"},
		{"powershell params", GrammarPowerShell, "Function Set-Value($x) {", "Set-Value"},
		{"bash", GrammarShell, "deploy() {", "deploy"},
		{"bash keyword", GrammarShell, "function cleanup () {", "cleanup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.family.declarationPattern().FindStringSubmatch(tt.line)
			if assert.NotNil(t, m) {
				assert.Equal(t, tt.want, m[1])
			}
		})
	}
}

func TestDeclarationPatterns_NoMatch(t *testing.T) {
	assert.Nil(t, GrammarIndent.declarationPattern().FindStringSubmatch("x = define(1)"))
	assert.Nil(t, GrammarShell.declarationPattern().FindStringSubmatch("echo deploy"))
	assert.Nil(t, GrammarMarkdown.declarationPattern())
	assert.Nil(t, GrammarPlain.declarationPattern())
}

func TestIsControlFlow(t *testing.T) {
	for _, name := range []string{"if", "for", "while", "switch", "catch", "If"} {
		assert.True(t, isControlFlow(name), name)
	}
	for _, name := range []string{"add", "format", "iff"} {
		assert.False(t, isControlFlow(name), name)
	}
}
