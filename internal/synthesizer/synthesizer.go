// Package synthesizer turns retrieved context plus a question into a
// generated answer, then strips any verbatim context leakage before the
// answer reaches the user.
package synthesizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"vivi/internal/domain"
)

const (
	// minDocWords filters retrieval noise: headers and fragments rarely
	// exceed ten words.
	minDocWords = 10

	insufficientResponse = "Desculpe, não encontrei informações suficientes para responder sua pergunta. 😔"

	answerMarker  = "Resposta:"
	contextMarker = "Contexto:"

	promptTemplate = "A seguir está uma pergunta respondida por Vivi, uma assistente virtual brasileira, empática, amigável e respeitosa.\n" +
		"Ela responde com base no contexto fornecido, sem inventar informações e sem repetir trechos do contexto.\n" +
		"Caso a informação não esteja presente, ela explica educadamente que não foi possível encontrar a resposta.\n\n" +
		"A resposta deve ter no máximo 500 caracteres. Se for necessário ultrapassar esse limite, Vivi deve perguntar ao usuário se deseja mais detalhes antes de continuar.\n" +
		"Contexto:\n%s\n\n" +
		"Pergunta:\n%s\n\n" +
		"Resposta:"
)

// preservePatterns allow factual lines to survive sanitation: centre names,
// zone labels, street addresses, weekday hours, phone numbers and e-mails
// may appear verbatim in an answer.
var preservePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Centro de Referência LGBTI\+.*`),
	regexp.MustCompile(`(?i)Zona (Oeste|Leste|Sul|Norte|Centro)`),
	regexp.MustCompile(`(?i)(Rua|Avenida|Av\.|Travessa|Alameda|Praça|Estrada)\s+.*[0-9]+.*`),
	regexp.MustCompile(`(?i)Segunda a sexta-feira.*`),
	regexp.MustCompile(`\(?\d{2}\)?\s?\d{4,5}-?\d{4}`),
	regexp.MustCompile(`(?i)E-?mail:?\s?[^\s]+@[^\s]+`),
}

// Result is one synthesis outcome. Synthesized is false on the
// insufficient-context and generation-failure paths, which must not be
// cached or recorded for evaluation.
type Result struct {
	Answer      string
	Context     string
	Synthesized bool
	Failed      bool
}

// Synthesizer builds bounded prompts and sanitizes model output.
type Synthesizer struct {
	generator   domain.Generator
	tokenizer   domain.Tokenizer
	params      domain.GenerationParams
	tokenBudget int
}

func New(generator domain.Generator, tokenizer domain.Tokenizer, params domain.GenerationParams, tokenBudget int) *Synthesizer {
	if tokenBudget <= 0 {
		tokenBudget = 1024
	}
	return &Synthesizer{generator: generator, tokenizer: tokenizer, params: params, tokenBudget: tokenBudget}
}

// Synthesize answers the question from the retrieved documents. A generation
// error is converted into a user-facing apology carrying the error detail;
// this is the only place an internal error reaches the user.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, docs []domain.Document) Result {
	var kept []string
	for _, doc := range docs {
		if len(strings.Fields(doc.Text)) > minDocWords {
			kept = append(kept, doc.Text)
		}
	}
	if len(kept) == 0 {
		return Result{Answer: insufficientResponse}
	}

	bounded := s.tokenizer.Truncate(strings.Join(kept, "\n"), s.tokenBudget)
	prompt := fmt.Sprintf(promptTemplate, bounded, question)

	raw, err := s.generator.Generate(ctx, prompt, s.params)
	if err != nil {
		return Result{
			Answer:  fmt.Sprintf("Desculpe, não consegui gerar uma resposta agora. Detalhe do erro: %v", err),
			Context: bounded,
			Failed:  true,
		}
	}

	return Result{Answer: sanitize(raw, bounded), Context: bounded, Synthesized: true}
}

// sanitize extracts the text after the answer marker (the raw output echoes
// the full prompt), strips non-preserved context lines reproduced verbatim,
// and cuts anything after a leaked context marker.
func sanitize(raw, boundedContext string) string {
	answer := raw
	if i := strings.LastIndex(raw, answerMarker); i >= 0 {
		answer = raw[i+len(answerMarker):]
	}
	answer = strings.TrimSpace(answer)

	for _, line := range strings.Split(boundedContext, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || preserved(line) {
			continue
		}
		if strings.Contains(answer, line) {
			answer = strings.ReplaceAll(answer, line, "")
		}
	}

	if i := strings.Index(answer, contextMarker); i >= 0 {
		answer = answer[:i]
	}
	return strings.TrimSpace(answer)
}

func preserved(line string) bool {
	for _, p := range preservePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
