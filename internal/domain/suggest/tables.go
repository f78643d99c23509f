package suggest

var eslintRules = map[string]Suggestion{
	"no-unused-vars": {
		Title:      "Remove unused variable",
		Suggestion: "Delete the variable or use it. Prefix intentionally unused arguments with an underscore.",
	},
	"no-undef": {
		Title:      "Declare the variable",
		Suggestion: "Import or declare the identifier before use, or add the global to the environment configuration.",
	},
	"no-console": {
		Title:      "Remove console statement",
		Suggestion: "Remove debugging output or replace it with a proper logger.",
	},
	"eqeqeq": {
		Title:      "Use strict equality",
		Suggestion: "Replace == with === and != with !== to avoid type coercion.",
	},
	"semi": {
		Title:      "Add missing semicolon",
		Suggestion: "Terminate the statement with a semicolon.",
	},
	"quotes": {
		Title:      "Use consistent quotes",
		Suggestion: "Use the configured quote style for string literals.",
	},
	"no-var": {
		Title:      "Replace var with let or const",
		Suggestion: "Use const for bindings that are never reassigned and let otherwise.",
	},
	"prefer-const": {
		Title:      "Use const",
		Suggestion: "This binding is never reassigned; declare it with const.",
	},
	"no-debugger": {
		Title:      "Remove debugger statement",
		Suggestion: "Delete the debugger statement before shipping the code.",
	},
	"no-empty": {
		Title:      "Fill or remove empty block",
		Suggestion: "Add the missing logic or a comment explaining why the block is intentionally empty.",
	},
	"no-unreachable": {
		Title:      "Remove unreachable code",
		Suggestion: "Code after return, throw, break or continue never runs; delete it or restructure the control flow.",
	},
	"no-dupe-keys": {
		Title:      "Remove duplicate key",
		Suggestion: "An object literal defines the same key twice; keep only the intended value.",
	},
	"no-redeclare": {
		Title:      "Avoid redeclaring variables",
		Suggestion: "Rename one of the declarations or reuse the existing variable.",
	},
	"curly": {
		Title:      "Add braces",
		Suggestion: "Wrap the body of the control statement in braces.",
	},
	"no-extra-semi": {
		Title:      "Remove extra semicolon",
		Suggestion: "Delete the unnecessary semicolon.",
	},
	"no-constant-condition": {
		Title:      "Avoid constant condition",
		Suggestion: "The condition always evaluates the same way; use a real expression or remove the branch.",
	},
	"no-fallthrough": {
		Title:      "Add break to switch case",
		Suggestion: "End the case with break, return or an explicit fallthrough comment.",
	},
	"parsing-error": {
		Title:      "Fix syntax error",
		Suggestion: "The file could not be parsed; fix the syntax error reported at this location.",
	},
}

var stylelintRules = map[string]Suggestion{
	"color-no-invalid-hex": {
		Title:      "Fix invalid hex color",
		Suggestion: "Use a valid 3, 4, 6 or 8 digit hex color.",
	},
	"block-no-empty": {
		Title:      "Remove empty block",
		Suggestion: "Delete the empty rule or add declarations to it.",
	},
	"declaration-block-no-duplicate-properties": {
		Title:      "Remove duplicate property",
		Suggestion: "The same property is declared twice in one block; keep the intended declaration.",
	},
	"selector-pseudo-class-no-unknown": {
		Title:      "Fix unknown pseudo-class",
		Suggestion: "Check the spelling of the pseudo-class selector.",
	},
	"property-no-unknown": {
		Title:      "Fix unknown property",
		Suggestion: "Check the spelling of the CSS property or add the vendor prefix it needs.",
	},
	"unit-no-unknown": {
		Title:      "Fix unknown unit",
		Suggestion: "Use a valid CSS unit such as px, rem, em or %.",
	},
	"font-family-no-missing-generic-family-keyword": {
		Title:      "Add generic font family",
		Suggestion: "End the font-family list with a generic family such as sans-serif or serif.",
	},
	"no-duplicate-selectors": {
		Title:      "Merge duplicate selectors",
		Suggestion: "The selector appears more than once; merge the rules into one block.",
	},
	"comment-no-empty": {
		Title:      "Remove empty comment",
		Suggestion: "Delete the empty comment.",
	},
	"length-zero-no-unit": {
		Title:      "Drop unit from zero",
		Suggestion: "Zero lengths do not need a unit; write 0 instead of 0px.",
	},
	"CssSyntaxError": {
		Title:      "Fix CSS syntax error",
		Suggestion: "The stylesheet could not be parsed; fix the syntax at this location.",
	},
}

var htmlhintRules = map[string]Suggestion{
	"tagname-lowercase": {
		Title:      "Lowercase tag name",
		Suggestion: "Write element names in lowercase.",
	},
	"attr-lowercase": {
		Title:      "Lowercase attribute name",
		Suggestion: "Write attribute names in lowercase.",
	},
	"attr-value-double-quotes": {
		Title:      "Quote attribute value",
		Suggestion: "Wrap attribute values in double quotes.",
	},
	"doctype-first": {
		Title:      "Add doctype",
		Suggestion: "Start the document with <!DOCTYPE html>.",
	},
	"tag-pair": {
		Title:      "Close the tag",
		Suggestion: "Every opening tag needs a matching closing tag.",
	},
	"spec-char-escape": {
		Title:      "Escape special character",
		Suggestion: "Escape < and > as &lt; and &gt; in text content.",
	},
	"id-unique": {
		Title:      "Make id unique",
		Suggestion: "Element ids must be unique within a page.",
	},
	"src-not-empty": {
		Title:      "Set src attribute",
		Suggestion: "Give the src attribute a value or remove the element.",
	},
	"attr-no-duplication": {
		Title:      "Remove duplicate attribute",
		Suggestion: "An element declares the same attribute twice; keep one.",
	},
	"title-require": {
		Title:      "Add page title",
		Suggestion: "Add a <title> element inside <head>.",
	},
	"alt-require": {
		Title:      "Add alt text",
		Suggestion: "Give every <img> an alt attribute describing the image.",
	},
}

var prettierRules = map[string]Suggestion{
	"prettier/formatting": {
		Title:      "Format file with Prettier",
		Suggestion: "Run prettier --write on the file to apply the canonical formatting.",
	},
	"prettier/parse-error": {
		Title:      "Fix syntax error",
		Suggestion: "Prettier could not parse the file; fix the syntax error before formatting.",
	},
}

// Keys are markdownlint rule numbers; aliases resolve through markdownAliases.
var markdownlintRules = map[string]Suggestion{
	"MD001": {Title: "Fix heading levels", Suggestion: "Heading levels should only increase by one level at a time."},
	"MD003": {Title: "Use consistent heading style", Suggestion: "Use the same heading style (ATX or setext) throughout the document."},
	"MD004": {Title: "Use consistent list markers", Suggestion: "Use the same marker (-, * or +) for all unordered list items."},
	"MD009": {Title: "Remove trailing spaces", Suggestion: "Delete whitespace at the end of the line."},
	"MD010": {Title: "Replace hard tabs", Suggestion: "Indent with spaces instead of tab characters."},
	"MD012": {Title: "Remove extra blank lines", Suggestion: "Use a single blank line between blocks."},
	"MD013": {Title: "Shorten long line", Suggestion: "Wrap the line to stay within the configured line length."},
	"MD022": {Title: "Surround headings with blank lines", Suggestion: "Add a blank line before and after the heading."},
	"MD025": {Title: "Use a single top-level heading", Suggestion: "A document should have only one H1 heading."},
	"MD031": {Title: "Surround code blocks with blank lines", Suggestion: "Add a blank line before and after fenced code blocks."},
	"MD032": {Title: "Surround lists with blank lines", Suggestion: "Add a blank line before and after the list."},
	"MD034": {Title: "Wrap bare URL", Suggestion: "Wrap bare URLs in angle brackets or turn them into links."},
	"MD040": {Title: "Specify code block language", Suggestion: "Add a language identifier after the opening code fence."},
	"MD041": {Title: "Start with a top-level heading", Suggestion: "The first line of the file should be an H1 heading."},
	"MD047": {Title: "End file with newline", Suggestion: "Terminate the file with a single newline character."},
}

var auditSeverities = map[string]Suggestion{
	"critical": {
		Title:      "Upgrade immediately",
		Suggestion: "A critical vulnerability is present; upgrade the package to a patched version or run npm audit fix now.",
	},
	"high": {
		Title:      "Upgrade soon",
		Suggestion: "Upgrade the package to a version that fixes this high severity vulnerability.",
	},
	"moderate": {
		Title:      "Plan an upgrade",
		Suggestion: "Schedule an upgrade of the affected package; check whether the vulnerable code path is reachable.",
	},
	"low": {
		Title:      "Review when convenient",
		Suggestion: "Low severity vulnerability; upgrade during regular dependency maintenance.",
	},
	"info": {
		Title:      "Review advisory",
		Suggestion: "Read the advisory and decide whether any action is needed.",
	},
}

var dependencyTypes = map[string]Suggestion{
	"unused": {
		Title:      "Remove unused dependency",
		Suggestion: "The package is listed in dependencies but never imported; remove it with npm uninstall.",
	},
	"devUnused": {
		Title:      "Remove unused dev dependency",
		Suggestion: "The package is listed in devDependencies but never used; remove it with npm uninstall --save-dev.",
	},
	"missing": {
		Title:      "Add missing dependency",
		Suggestion: "The package is imported but not declared in package.json; add it with npm install.",
	},
}

// markdownAliases maps markdownlint rule aliases to rule numbers.
var markdownAliases = map[string]string{
	"heading-increment":       "MD001",
	"heading-style":           "MD003",
	"ul-style":                "MD004",
	"no-trailing-spaces":      "MD009",
	"no-hard-tabs":            "MD010",
	"no-multiple-blanks":      "MD012",
	"line-length":             "MD013",
	"blanks-around-headings":  "MD022",
	"single-title":            "MD025",
	"single-h1":               "MD025",
	"blanks-around-fences":    "MD031",
	"blanks-around-lists":     "MD032",
	"no-bare-urls":            "MD034",
	"fenced-code-language":    "MD040",
	"first-line-heading":      "MD041",
	"first-line-h1":           "MD041",
	"single-trailing-newline": "MD047",
}
