// Package router classifies a question into a fixed response strategy
// before any retrieval happens. Rules are evaluated in order against the
// lower-cased trimmed question and the first match wins, so a question
// spanning categories is resolved by priority, not by best match.
package router

import "strings"

// Intent is the category a question was routed to.
type Intent int

const (
	// Unclassified falls through to cache lookup and full retrieval.
	Unclassified Intent = iota
	// Identity asks who or what the assistant is.
	Identity
	// NameOrigin asks about the meaning of the assistant's name.
	NameOrigin
	// Provenance asks where the information comes from.
	Provenance
	// ContactLookup asks for a contact field and delegates to extraction.
	ContactLookup
)

func (i Intent) String() string {
	switch i {
	case Identity:
		return "identity"
	case NameOrigin:
		return "name_origin"
	case Provenance:
		return "provenance"
	case ContactLookup:
		return "contact_lookup"
	default:
		return "unclassified"
	}
}

// Rule matches a question containing any of its phrases. Response is the
// canned answer, empty for intents handled elsewhere.
type Rule struct {
	Intent   Intent
	Phrases  []string
	Response string
}

// Match is the routing outcome for one question.
type Match struct {
	Intent   Intent
	Response string
}

// Router evaluates an ordered rule list.
type Router struct {
	rules []Rule
}

// New returns a router with the default ruleset.
func New() *Router {
	return &Router{rules: defaultRules()}
}

// NewWithRules returns a router over a custom ordered ruleset.
func NewWithRules(rules []Rule) *Router {
	return &Router{rules: rules}
}

// Classify routes a question. The router itself is stateless; callers own
// any side effects (caching, logging) of the returned match.
func (r *Router) Classify(question string) Match {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, rule := range r.rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(q, phrase) {
				return Match{Intent: rule.Intent, Response: rule.Response}
			}
		}
	}
	return Match{Intent: Unclassified}
}

const (
	identityResponse = "Eu sou a Vivi, sua assistente virtual!\n" +
		"Fui criada para oferecer apoio, acolhimento e informações úteis, especialmente para quem passou por situações difíceis. " +
		"Estou aqui para ouvir, orientar com empatia e te ajudar a encontrar o que precisa. Você não está só. 🌟"

	nameOriginResponse = "Meu nome tem origem no Latim e significa 'cheio de vida', 'vivo' e 'vida'. " +
		"Além de ser um nome brasileiro, ele é uma homenagem às pessoas que sobreviveram a situações de violência — " +
		"um lembrete de que ainda há força, esperança e luz dentro de cada uma delas."

	provenanceResponse = "As informações aqui apresentadas têm como base conteúdos produzidos por centros de referência LGBTI+ " +
		"e pela ANTRA (Associação Nacional de Travestis e Transexuais), especialmente as cartilhas elaboradas por " +
		"Bruna G. Benevides (@brunabenevidex), 2ª Sargenta da Marinha do Brasil, com foco em orientações à população LGBTI " +
		"no combate à LGBTIfobia e sobre violência doméstica. " +
		"O material contou com revisão técnica de Paulo Iotti (@pauloiotti), advogado, e Anderson Cavichioli (@renosplgbti), " +
		"presidente da RENOSP-LGBTI e delegado de Polícia Civil; " +
		"revisão ortográfica de Isaac Porto (@iporto), consultor LGBTI para o Instituto sobre Raça, Igualdade e Direitos Humanos; " +
		"e projeto gráfico e diagramação de Raykka Rica (@distritodrag), integrante do coletivo Distrito Drag."
)

func defaultRules() []Rule {
	return []Rule{
		{
			Intent: Identity,
			Phrases: []string{
				"o que você é",
				"quem é você",
				"o que você faz",
				"quem está falando",
				"qual é a sua função",
				"qual o seu nome",
			},
			Response: identityResponse,
		},
		{
			Intent: NameOrigin,
			Phrases: []string{
				"qual a origem do seu nome",
				"qual o significado do seu nome",
				"qual é o significado do seu nome",
				"qual o motivo do seu nome",
				"seu nome é uma homenagem a alguém",
			},
			Response: nameOriginResponse,
		},
		{
			Intent: Provenance,
			Phrases: []string{
				"qual é a fonte",
				"quais são as fontes",
				"de onde vem",
				"onde encontrou",
				"de onde tirou isso",
				"você pode citar as fontes",
				"origem da informação",
				"qual a origem da informação",
			},
			Response: provenanceResponse,
		},
		{
			Intent: ContactLookup,
			Phrases: []string{
				"contato",
				"email",
				"e-mail",
				"telefone",
				"horário de funcionamento",
			},
		},
	}
}
