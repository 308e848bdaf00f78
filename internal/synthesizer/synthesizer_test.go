package synthesizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vivi/internal/domain"
	"vivi/internal/generation"
)

// scriptedGenerator returns a fixed draft and counts invocations.
type scriptedGenerator struct {
	draft string
	err   error
	calls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.draft, nil
}

func newSynth(gen domain.Generator) *Synthesizer {
	return New(gen, generation.NewWordTokenizer(), generation.DefaultParams(), 1024)
}

func longDoc(sentence string) domain.Document {
	return domain.Document{Text: sentence}
}

const fillerSentence = "Este documento descreve em detalhes os serviços de acolhimento oferecidos pela rede de apoio da cidade."

func TestInsufficientContextSkipsGeneration(t *testing.T) {
	gen := &scriptedGenerator{draft: "anything"}
	s := newSynth(gen)

	short := []domain.Document{
		{Text: "apenas um título"},
		{Text: "outro fragmento curto"},
	}
	res := s.Synthesize(context.Background(), "o que fazer?", short)

	assert.Equal(t, "Desculpe, não encontrei informações suficientes para responder sua pergunta. 😔", res.Answer)
	assert.False(t, res.Synthesized)
	assert.Zero(t, gen.calls)
}

func TestLeakedContextLineIsStripped(t *testing.T) {
	leaked := "Esse material foi produzido como parte de um projeto de pesquisa universitário sobre tecnologia."
	gen := &scriptedGenerator{draft: "Resposta: Você pode buscar ajuda. " + leaked + " Procure um centro próximo."}
	s := newSynth(gen)

	docs := []domain.Document{longDoc(fillerSentence + "\n" + leaked)}
	res := s.Synthesize(context.Background(), "onde buscar ajuda?", docs)

	require.True(t, res.Synthesized)
	assert.NotContains(t, res.Answer, leaked)
	assert.Contains(t, res.Answer, "Você pode buscar ajuda.")
}

func TestPreservedPhoneLineSurvives(t *testing.T) {
	phoneLine := "(11) 4329-1000"
	gen := &scriptedGenerator{draft: "Resposta: O telefone do centro é " + phoneLine + "."}
	s := newSynth(gen)

	docs := []domain.Document{longDoc(fillerSentence + "\n" + phoneLine)}
	res := s.Synthesize(context.Background(), "qual o telefone?", docs)

	require.True(t, res.Synthesized)
	assert.Contains(t, res.Answer, phoneLine)
}

func TestPreservedAddressLineSurvives(t *testing.T) {
	addr := "Avenida Nordestina, 496 – São Miguel Paulista"
	gen := &scriptedGenerator{draft: "Resposta: O centro fica na " + addr + "."}
	s := newSynth(gen)

	docs := []domain.Document{longDoc(fillerSentence + "\n" + addr)}
	res := s.Synthesize(context.Background(), "onde fica?", docs)

	require.True(t, res.Synthesized)
	assert.Contains(t, res.Answer, addr)
}

func TestAnswerMarkerExtraction(t *testing.T) {
	gen := &scriptedGenerator{draft: "prompt echo...\nContexto:\nblah\n\nResposta: A resposta final."}
	s := newSynth(gen)

	res := s.Synthesize(context.Background(), "pergunta?", []domain.Document{longDoc(fillerSentence)})
	require.True(t, res.Synthesized)
	assert.Equal(t, "A resposta final.", res.Answer)
}

func TestNoMarkerKeepsWholeOutput(t *testing.T) {
	gen := &scriptedGenerator{draft: "Uma resposta direta sem eco do prompt."}
	s := newSynth(gen)

	res := s.Synthesize(context.Background(), "pergunta?", []domain.Document{longDoc(fillerSentence)})
	require.True(t, res.Synthesized)
	assert.Equal(t, "Uma resposta direta sem eco do prompt.", res.Answer)
}

func TestContextMarkerCut(t *testing.T) {
	gen := &scriptedGenerator{draft: "Resposta: Procure ajuda no centro mais próximo.\nContexto:\ntexto vazado do prompt"}
	s := newSynth(gen)

	res := s.Synthesize(context.Background(), "pergunta?", []domain.Document{longDoc(fillerSentence)})
	require.True(t, res.Synthesized)
	assert.Equal(t, "Procure ajuda no centro mais próximo.", res.Answer)
	assert.NotContains(t, res.Answer, "vazado")
}

func TestGenerationErrorBecomesApology(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("model exploded")}
	s := newSynth(gen)

	res := s.Synthesize(context.Background(), "pergunta?", []domain.Document{longDoc(fillerSentence)})
	assert.False(t, res.Synthesized)
	assert.True(t, res.Failed)
	assert.Contains(t, res.Answer, "Desculpe")
	assert.Contains(t, res.Answer, "model exploded")
}

func TestContextIsTokenBounded(t *testing.T) {
	gen := &scriptedGenerator{draft: "Resposta: ok"}
	s := New(gen, generation.NewWordTokenizer(), generation.DefaultParams(), 5)

	doc := longDoc("um dois três quatro cinco seis sete oito nove dez onze doze")
	res := s.Synthesize(context.Background(), "pergunta?", []domain.Document{doc})

	require.True(t, res.Synthesized)
	assert.Equal(t, "um dois três quatro cinco", res.Context)
	assert.Equal(t, 5, len(strings.Fields(res.Context)))
}
