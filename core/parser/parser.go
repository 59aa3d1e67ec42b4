// Package parser extracts import specifiers and reference directives from
// TypeScript and JavaScript sources together with their byte ranges.
package parser

import (
	"bytes"
	"io"
	"regexp"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
)

var referencePath = regexp.MustCompile(`^///\s*<reference\s+path\s*=\s*(?:"([^"]*)"|'([^']*)')`)

type token struct {
	tt   js.TokenType
	data []byte
}

// Parse scans src and returns the references it contains. Lexing errors are
// skipped over; whatever was recognised before and after them is kept.
func Parse(path string, src []byte) models.SourceFile {
	file := models.SourceFile{Path: path}
	src = blankHashbang(src)

	input := parse.NewInputBytes(src)
	defer input.Restore()
	lexer := js.NewLexer(input)

	var (
		history [3]token
		pending *models.ImportReference
		header  = true
	)
	push := func(t token) {
		history[2], history[1], history[0] = history[1], history[0], t
	}

	for {
		tt, data := lexer.Next()
		if tt == js.ErrorToken {
			if lexer.Err() == io.EOF || len(data) == 0 {
				if lexer.Err() != io.EOF {
					logger.Debug("Parser: stopped early in %s: %v", path, lexer.Err())
				}
				break
			}
			continue
		}
		start := input.Offset() - len(data)

		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentLineTerminatorToken:
			continue
		case js.CommentToken:
			if header {
				if ref, ok := referenceDirective(path, data, start); ok {
					file.ReferencedFiles = append(file.ReferencedFiles, ref)
				}
			}
			continue
		case js.DivToken, js.DivEqToken:
			if !endsExpression(history[0].tt) {
				tt, data = lexer.RegExp()
				if tt == js.ErrorToken {
					continue
				}
			}
		}
		header = false

		if pending != nil {
			// a call with options, import("x", {...}), still counts
			if tt == js.CloseParenToken || tt == js.CommaToken {
				file.Imports = append(file.Imports, *pending)
			}
			pending = nil
		}

		if tt == js.StringToken || tt == js.TemplateToken {
			if ref, ok := specifierAt(path, data, start); ok {
				switch {
				case tt == js.StringToken && isModuleClause(history[0], history[1]):
					file.Imports = append(file.Imports, ref)
				case history[0].tt == js.OpenParenToken && isLoaderCall(history[1], history[2]):
					pending = &ref
				}
			}
		}
		push(token{tt: tt, data: data})
	}
	return file
}

// isModuleClause reports whether a string following keyword (preceded by
// before) is the module of an import or export declaration.
func isModuleClause(keyword, before token) bool {
	if before.tt == js.DotToken {
		return false
	}
	return keyword.tt == js.FromToken || keyword.tt == js.ImportToken
}

// isLoaderCall reports whether callee (preceded by before) is require or a
// dynamic import rather than a method of the same name.
func isLoaderCall(callee, before token) bool {
	if before.tt == js.DotToken {
		return false
	}
	if callee.tt == js.ImportToken {
		return true
	}
	return callee.tt == js.IdentifierToken && string(callee.data) == "require"
}

// endsExpression reports whether a '/' after tt is a division.
func endsExpression(tt js.TokenType) bool {
	if js.IsIdentifier(tt) || js.IsNumeric(tt) {
		return true
	}
	switch tt {
	case js.PrivateIdentifierToken, js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken,
		js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken:
		return true
	}
	return false
}

// specifierAt turns a quoted literal starting at offset into a reference
// whose range excludes the quotes.
func specifierAt(path string, literal []byte, offset int) (models.ImportReference, bool) {
	if len(literal) < 2 {
		return models.ImportReference{}, false
	}
	inner := literal[1 : len(literal)-1]
	if bytes.IndexByte(inner, '\\') >= 0 || bytes.Contains(inner, []byte("${")) {
		logger.Debug("Parser: skipping escaped specifier %s in %s", literal, path)
		return models.ImportReference{}, false
	}
	return models.ImportReference{
		ContainingFile:    path,
		Text:              string(inner),
		IsModuleSpecifier: true,
		Range:             models.Range{Pos: offset + 1, End: offset + len(literal) - 1},
	}, true
}

func referenceDirective(path string, comment []byte, offset int) (models.ImportReference, bool) {
	m := referencePath.FindSubmatchIndex(comment)
	if m == nil {
		return models.ImportReference{}, false
	}
	lo, hi := m[2], m[3]
	if lo < 0 {
		lo, hi = m[4], m[5]
	}
	return models.ImportReference{
		ContainingFile: path,
		Text:           string(comment[lo:hi]),
		Range:          models.Range{Pos: offset + lo, End: offset + hi},
	}, true
}

// blankHashbang replaces a leading "#!" line with spaces so offsets stay put.
func blankHashbang(src []byte) []byte {
	if !bytes.HasPrefix(src, []byte("#!")) {
		return src
	}
	out := make([]byte, len(src))
	copy(out, src)
	for i := 0; i < len(out) && out[i] != '\n' && out[i] != '\r'; i++ {
		out[i] = ' '
	}
	return out
}
