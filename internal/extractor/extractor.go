// Package extractor answers contact-field questions by deterministic pattern
// matching over the retrieved documents. It never invokes the generative
// model: either a field is found verbatim in a known centre's document or a
// fixed not-found message comes back.
package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"vivi/internal/domain"
)

// FieldKind identifies one extractable contact field.
type FieldKind int

const (
	FieldUnknown FieldKind = iota
	FieldPhone
	FieldEmail
	FieldAddress
	FieldHours
)

const (
	entityNotFound = "Desculpe, não encontrei esse centro."
	askWhichField  = "Que informação você gostaria de saber: telefone, e-mail, endereço ou horário?"
)

// knownEntities are the reference centre names a question may cite.
var knownEntities = []string{
	"laura vermont",
	"claudia wonder",
	"luana barbosa",
	"edson neris",
	"brunna valin",
}

// fieldSpec bundles the question keywords and extraction strategy for one
// field kind. Order in the fields table is the match priority.
type fieldSpec struct {
	kind     FieldKind
	keywords []string
	extract  func(doc string) (string, bool)
	missing  string
}

var (
	phoneRe   = regexp.MustCompile(`\(?\d{2}\)? ?\d{4,5}-\d{4}`)
	emailRe   = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	addressRe = regexp.MustCompile(`\n([^\n]*\d+[^\n]*)\n`)
	hoursRe   = regexp.MustCompile(`segunda.*\d+h.*\d+h`)
)

var fields = []fieldSpec{
	{
		kind:     FieldPhone,
		keywords: []string{"telefone"},
		extract: func(doc string) (string, bool) {
			phones := phoneRe.FindAllString(doc, -1)
			if len(phones) == 0 {
				return "", false
			}
			return "Telefone: " + strings.Join(phones, ", "), true
		},
		missing: "Telefone não encontrado.",
	},
	{
		kind:     FieldEmail,
		keywords: []string{"e-mail", "email"},
		extract: func(doc string) (string, bool) {
			m := emailRe.FindString(doc)
			if m == "" {
				return "", false
			}
			return "E-mail: " + m, true
		},
		missing: "E-mail não encontrado.",
	},
	{
		kind:     FieldAddress,
		keywords: []string{"endereço", "endereco"},
		extract: func(doc string) (string, bool) {
			m := addressRe.FindStringSubmatch(doc)
			if m == nil {
				return "", false
			}
			return "Endereço: " + m[1], true
		},
		missing: "Endereço não encontrado.",
	},
	{
		kind:     FieldHours,
		keywords: []string{"horário", "funcionamento"},
		extract: func(doc string) (string, bool) {
			m := hoursRe.FindString(strings.ToLower(doc))
			if m == "" {
				return "", false
			}
			return "Horário: " + capitalize(m), true
		},
		missing: "Horário não encontrado.",
	},
}

// Extract locates the retrieved document for the centre the question names
// and pulls the requested field from it.
func Extract(question string, docs []domain.Document) string {
	q := strings.ToLower(question)

	var target string
	for _, entity := range knownEntities {
		if !strings.Contains(q, entity) {
			continue
		}
		for _, doc := range docs {
			if strings.Contains(strings.ToLower(doc.Text), entity) {
				target = doc.Text
				break
			}
		}
		if target != "" {
			break
		}
	}
	if target == "" {
		return entityNotFound
	}

	for _, f := range fields {
		if !containsAny(q, f.keywords) {
			continue
		}
		if answer, ok := f.extract(target); ok {
			return answer
		}
		return f.missing
	}
	return askWhichField
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
