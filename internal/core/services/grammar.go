package services

import (
	"path/filepath"
	"regexp"
	"strings"
)

// GrammarFamily is the closed set of segmentation strategies.
// Each file is classified into exactly one family by extension.
type GrammarFamily int

// Grammar families. Adding a language means adding one entry to the
// grammars table, not another branch in the chunker.
const (
	// GrammarPlain keeps the whole file as one chunk.
	GrammarPlain GrammarFamily = iota

	// GrammarMarkdown splits on # headings.
	GrammarMarkdown

	// GrammarScript covers Harbour/xBase FUNCTION declarations.
	GrammarScript

	// GrammarBrace covers C-style signatures followed by an opening brace.
	GrammarBrace

	// GrammarCSharp covers C# methods and classes with optional modifiers.
	GrammarCSharp

	// GrammarJavaScript covers TypeScript and JavaScript function declarations.
	GrammarJavaScript

	// GrammarIndent covers Python def declarations.
	GrammarIndent

	// GrammarRoutine covers SQL procedures and functions.
	GrammarRoutine

	// GrammarPowerShell covers PowerShell Verb-Noun functions.
	GrammarPowerShell

	// GrammarShell covers POSIX shell and bash functions.
	GrammarShell
)

var grammarNames = map[GrammarFamily]string{
	GrammarPlain:      "plain",
	GrammarMarkdown:   "markdown",
	GrammarScript:     "script",
	GrammarBrace:      "brace",
	GrammarCSharp:     "csharp",
	GrammarJavaScript: "javascript",
	GrammarIndent:     "indent",
	GrammarRoutine:    "routine",
	GrammarPowerShell: "powershell",
	GrammarShell:      "shell",
}

// String returns the family name.
func (g GrammarFamily) String() string {
	if name, ok := grammarNames[g]; ok {
		return name
	}
	return "unknown"
}

// markdownHeading matches a level 1-6 heading and captures its text.
var markdownHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// declarations holds, per code family, a line-anchored pattern whose first
// group captures the declared name.
var declarations = map[GrammarFamily]*regexp.Regexp{
	GrammarScript: regexp.MustCompile(`(?i)^\s*(?:static\s+)?function\s+(\w+)\s*\(`),
	GrammarBrace:  regexp.MustCompile(`^\s*(?:\w+\s+)*(\w+)\s*\([^)]*\)\s*\{`),
	GrammarCSharp: regexp.MustCompile(
		`^\s*(?:public|private|protected|internal|static|async|virtual|override|\s)*` +
			`(?:class|void|Task|async\s+Task|string|int|bool|IActionResult|\w+<[^>]+>|\w+)\s+` +
			`(\w+)\s*(?:<[^>]+>)?\s*[\(\{]`),
	GrammarJavaScript: regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(`),
	GrammarIndent:     regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(`),
	GrammarRoutine:    regexp.MustCompile(`(?i)^\s*(?:CREATE\s+)?(?:PROCEDURE|FUNCTION|PROC)\s+(?:\w+\.)?(\w+)`),
	GrammarPowerShell: regexp.MustCompile(`(?i)^\s*function\s+(\w+(?:-\w+)*)\s*(?:\([^)]*\))?\s*\{`),
	GrammarShell:      regexp.MustCompile(`^\s*(?:function\s+)?(\w+)\s*\(\s*\)\s*\{`),
}

// controlFlow lists statement keywords that the brace-style signature
// patterns would otherwise take for declared names.
var controlFlow = map[string]struct{}{
	"if":      {},
	"else":    {},
	"for":     {},
	"foreach": {},
	"while":   {},
	"do":      {},
	"switch":  {},
	"case":    {},
	"catch":   {},
	"try":     {},
	"return":  {},
	"sizeof":  {},
	"using":   {},
	"lock":    {},
	"fixed":   {},
	"new":     {},
}

// isControlFlow reports whether name is a statement keyword rather than
// a declaration.
func isControlFlow(name string) bool {
	_, ok := controlFlow[strings.ToLower(name)]
	return ok
}

var extensionFamilies = map[string]GrammarFamily{
	".md":       GrammarMarkdown,
	".markdown": GrammarMarkdown,
	".prg":      GrammarScript,
	".ch":       GrammarScript,
	".c":        GrammarBrace,
	".h":        GrammarBrace,
	".cpp":      GrammarBrace,
	".hpp":      GrammarBrace,
	".cs":       GrammarCSharp,
	".ts":       GrammarJavaScript,
	".tsx":      GrammarJavaScript,
	".js":       GrammarJavaScript,
	".jsx":      GrammarJavaScript,
	".py":       GrammarIndent,
	".sql":      GrammarRoutine,
	".ps1":      GrammarPowerShell,
	".sh":       GrammarShell,
	".bash":     GrammarShell,
}

// ClassifyFile returns the grammar family for a path, by extension only.
func ClassifyFile(path string) GrammarFamily {
	if family, ok := extensionFamilies[strings.ToLower(filepath.Ext(path))]; ok {
		return family
	}
	return GrammarPlain
}

// declarationPattern returns the code declaration pattern of the family,
// or nil for markdown and plain text.
func (g GrammarFamily) declarationPattern() *regexp.Regexp {
	return declarations[g]
}
