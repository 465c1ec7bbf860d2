package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/retrievit/core"
)

const personaPromptTemplate = `You are an expert request router. Analyze the user's question and decide which
specialist persona is best equipped to answer it. Respond with ONLY the persona key.

Available personas:

1. clinical_analyst: clinical trial data, drug efficacy, safety profiles, patient
   outcomes, medical conditions, mechanisms of action.
   Keywords: treat, condition, indication, dosage, patients, trial, effective, side effects.

2. health_economist: cost-effectiveness, pricing, market access, economic
   evaluations, healthcare policy implications.
   Keywords: cost, price, economic, budget, financial, value, policy.

3. regulatory_specialist: submission types, meeting agendas, regulatory pathways,
   sponsors, official guidelines.
   Keywords: sponsor, submission, listing, agenda, meeting, guideline, status.

Valid keys: %s.
Return ONLY the single key name of the best-fitting persona. No explanation, no punctuation.`

const queryClassificationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "intent": {
      "type": "string",
      "enum": ["specific_fact_lookup", "simple_summary", "comparative_analysis", "general_qa", "unknown"]
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"}
    },
    "graph_suitable": {"type": "boolean"},
    "themes": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["intent", "keywords", "graph_suitable"],
  "additionalProperties": false
}`

const queryClassificationTemplate = `Interpret the user's question for a retrieval system and return JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any
preamble, explanation, greeting, or acknowledgment. Start your response directly with
the opening brace { and end with the closing brace }. Your output must exactly follow
this schema:

%s

Rules:
- "intent" is the single best-fitting category for the question.
- "keywords" are the proper nouns and domain terms a graph lookup should anchor on,
  lowercase, most important first.
- "graph_suitable" is true only when the question asks about a concrete relationship
  between named entities (sponsor of X, indication of Y).
- "themes" are high-level content themes usable as metadata filters, lowercase with
  underscores (e.g. "efficacy_results", "cost_effectiveness").

Example:
Input: "What company sponsors Abaloparatide?"
Output:
{
  "intent": "specific_fact_lookup",
  "keywords": ["abaloparatide", "sponsor"],
  "graph_suitable": true,
  "themes": ["sponsorship"]
}

Example:
Input: "Summarise the March 2025 meeting outcomes"
Output:
{
  "intent": "simple_summary",
  "keywords": ["march 2025", "meeting outcomes"],
  "graph_suitable": false,
  "themes": ["meeting_outcomes"]
}`

const rewriteTemplate = `You rewrite a user's latest question into standalone retrieval queries that can be
understood without the chat history.

Rules:
1. If the latest question is already complete and standalone, return it exactly as is
   as the first variant.
2. If it contains pronouns or ambiguous references ("it", "its", "this drug"), resolve
   them using the chat history.
3. You may add up to %d short paraphrased variants when they would plausibly retrieve
   different evidence. Fewer is fine.

Output ONLY valid JSON of the form {"variants": ["...", "..."]} with at least one
variant. No commentary.

Chat history:
%s

Latest user question: %s`

const rerankSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "scores": {
      "type": "array",
      "items": {"type": "number", "minimum": 0, "maximum": 1}
    }
  },
  "required": ["scores"],
  "additionalProperties": false
}`

const rerankTemplate = `Score how relevant each numbered passage is for answering the question.

Output ONLY valid JSON which complies with the schema given below, with exactly one
score per passage, aligned to the passage numbering, each in [0,1]:

%s

Question: %s

Passages:
%s`

// buildPersonaPrompt creates the persona classification system prompt.
func buildPersonaPrompt() string {
	keys := make([]string, 0, len(core.Personas))
	for _, p := range core.Personas {
		if p == core.PersonaDefault {
			continue
		}
		keys = append(keys, string(p))
	}
	return fmt.Sprintf(personaPromptTemplate, strings.Join(keys, ", "))
}

// buildQueryClassificationPrompt creates the intent classification system prompt.
func buildQueryClassificationPrompt() string {
	return fmt.Sprintf(queryClassificationTemplate, queryClassificationSchema)
}

// buildRewritePrompt creates the rewrite prompt for one query + history.
func buildRewritePrompt(query string, history []string, maxVariants int) string {
	formatted := "(none)"
	if len(history) > 0 {
		formatted = "- " + strings.Join(history, "\n- ")
	}
	return fmt.Sprintf(rewriteTemplate, maxVariants, formatted, query)
}

// buildRerankPrompt creates the scoring prompt for one query + passage batch.
func buildRerankPrompt(query string, passages []string) string {
	var b strings.Builder
	for i, passage := range passages {
		fmt.Fprintf(&b, "%d. %s\n", i+1, passage)
	}
	return fmt.Sprintf(rerankTemplate, rerankSchema, query, b.String())
}
