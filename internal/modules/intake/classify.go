// README: Utterance classifiers (yes/no, incident text, address text) and the LLM tow-reason check.
package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"fria/internal/ai"
)

// Answer rules. Phrases are matched on whole tokens of the normalized text.
var (
	uncertainPhrases = phraseList(
		"not sure", "i don't know", "i dont know", "don't know", "dont know",
		"no idea", "unsure", "maybe", "idk",
	)
	// Negations that describe someone else or an injury, not the answer itself.
	neutralPhrases = phraseList(
		"no one", "noone", "nobody", "not hurt", "not injured", "not really hurt",
		"not really injured", "no injuries", "no injury", "not a scratch",
	)
	commonNegative = phraseList("not really", "not at all", "no way")

	safetyRules = yesNoRules{
		negative: append(phraseList(
			"not safe", "unsafe", "not okay", "not ok", "not fine", "not alright",
			"in danger", "i'm hurt", "i am hurt", "im hurt", "i'm injured",
			"i am injured", "we're hurt", "we are hurt",
		), commonNegative...),
		affirmative: phraseList(
			"i am safe", "i'm safe", "im safe", "we are safe", "we're safe",
			"i am okay", "i'm okay", "i am ok", "i'm ok", "i am fine", "i'm fine",
			"all good",
		),
	}
	operabilityRules = yesNoRules{
		negative: append(phraseList(
			"not drivable", "not driveable", "not operable", "won't start",
			"wont start", "doesn't start", "doesnt start", "won't move", "wont move",
			"can't drive", "cant drive", "cannot drive", "can't move", "cannot move",
			"won't run", "not working", "doesn't work", "doesnt work",
		), commonNegative...),
		affirmative: phraseList(
			"it works", "still works", "it runs", "still runs", "runs fine",
			"it starts", "can drive", "it drives", "drives fine", "still drivable",
			"it's drivable",
		),
	}

	affirmativeTokens = tokenSet("yes", "yeah", "yep", "yup", "yea", "ya", "y",
		"sure", "safe", "ok", "okay", "fine", "correct", "affirmative",
		"absolutely", "definitely", "drivable", "driveable", "operable")
	negativeTokens = tokenSet("no", "nope", "nah", "n", "negative", "unsafe",
		"danger", "undrivable", "inoperable", "totaled", "totalled")

	addressTokens = tokenSet("street", "st", "road", "rd", "ave", "avenue",
		"blvd", "boulevard", "drive", "dr", "lane", "ln", "way", "court", "ct",
		"place", "pl", "parkway", "pkwy", "highway", "hwy", "freeway", "fwy",
		"expressway", "expy", "interstate", "turnpike", "route", "rte", "exit",
		"near", "intersection", "corner", "mile", "marker", "circle", "plaza")

	skipAnswers = tokenSet("skip", "idk", "n/a", "na", "n a", "none", "unsure",
		"unknown", "pass")
)

func tokenSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// normalize lowercases, folds curly apostrophes, turns punctuation into
// spaces and collapses whitespace. Apostrophes survive so contractions match.
func normalize(text string) string {
	text = strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func phraseList(phrases ...string) [][]string {
	out := make([][]string, len(phrases))
	for i, p := range phrases {
		out[i] = strings.Fields(p)
	}
	return out
}

// matchAt returns the token length of the first phrase starting at tokens[i], or 0.
func matchAt(tokens []string, i int, phrases [][]string) int {
	for _, p := range phrases {
		if len(p) == 0 || i+len(p) > len(tokens) {
			continue
		}
		hit := true
		for j, w := range p {
			if tokens[i+j] != w {
				hit = false
				break
			}
		}
		if hit {
			return len(p)
		}
	}
	return 0
}

func containsPhrase(tokens []string, phrases [][]string) bool {
	for i := range tokens {
		if matchAt(tokens, i, phrases) > 0 {
			return true
		}
	}
	return false
}

const (
	// Uncertain phrases only count in short answers.
	shortAnswerTokens = 8
	// A phrase must start within the opening words of the answer.
	leadPhraseTokens = 6
	// Bare yes/no tokens only count near the start of the answer.
	leadTokens = 3
)

type yesNoRules struct {
	negative    [][]string
	affirmative [][]string
}

// parse walks the answer left to right and returns the first rule that
// matches. Neutral phrases are stepped over so "nobody was injured" never
// reads as a no.
func (r yesNoRules) parse(text string) (value bool, ok bool) {
	tokens := strings.Fields(normalize(text))
	if len(tokens) == 0 {
		return false, false
	}
	short := len(tokens) <= shortAnswerTokens
	for i := 0; i < len(tokens) && i < leadPhraseTokens; i++ {
		if n := matchAt(tokens, i, neutralPhrases); n > 0 {
			i += n - 1
			continue
		}
		if short && matchAt(tokens, i, uncertainPhrases) > 0 {
			return false, false
		}
		if matchAt(tokens, i, r.negative) > 0 {
			return false, true
		}
		if matchAt(tokens, i, r.affirmative) > 0 {
			return true, true
		}
		if i >= leadTokens {
			continue
		}
		if _, hit := affirmativeTokens[tokens[i]]; hit {
			return true, true
		}
		if _, hit := negativeTokens[tokens[i]]; hit {
			return false, true
		}
	}
	return false, false
}

// ParseYesNo interprets an answer to the safety question. The leftmost
// match wins. ok is false when the text is ambiguous; callers must not
// advance on an ambiguous answer.
func ParseYesNo(text string) (value bool, ok bool) {
	return safetyRules.parse(text)
}

// ParseOperable interprets an answer to "can the vehicle be driven".
func ParseOperable(text string) (value bool, ok bool) {
	return operabilityRules.parse(text)
}

// LooksLikeIncident accepts free text of at least three words that is not a yes/no answer.
func LooksLikeIncident(text string) bool {
	norm := normalize(text)
	if len(strings.Fields(norm)) < 3 {
		return false
	}
	_, yesNo := ParseYesNo(text)
	return !yesNo
}

// LooksLikeAddress accepts text longer than eight characters containing a street-ish token.
func LooksLikeAddress(text string) bool {
	norm := normalize(text)
	if len(norm) <= 8 {
		return false
	}
	for _, tok := range strings.Fields(norm) {
		if _, hit := addressTokens[tok]; hit {
			return true
		}
	}
	return false
}

// isSkipAnswer reports answers that explicitly decline to provide a value.
func isSkipAnswer(text string) bool {
	raw := strings.ToLower(strings.TrimSpace(text))
	if raw == "" {
		return true
	}
	if _, hit := skipAnswers[raw]; hit {
		return true
	}
	norm := normalize(text)
	if _, hit := skipAnswers[norm]; hit {
		return true
	}
	tokens := strings.Fields(norm)
	return len(tokens) <= 4 && containsPhrase(tokens, uncertainPhrases)
}

// looksLikeValue is the classifier for configured fields without a dedicated lane.
func looksLikeValue(text string) bool {
	if isSkipAnswer(text) {
		return false
	}
	_, yesNo := ParseYesNo(text)
	return !yesNo || len(strings.Fields(normalize(text))) > 2
}

// TowReasonValidator asks the model whether an answer is a plausible reason
// to tow. Model replies that fail to parse count as invalid. Without a model,
// or when the call is refused as ai.ErrUnavailable, a word-count heuristic
// decides instead so the intake can still finish.
type TowReasonValidator struct {
	llm ai.LLM
	log *slog.Logger
}

func NewTowReasonValidator(llm ai.LLM, log *slog.Logger) *TowReasonValidator {
	if log == nil {
		log = slog.Default()
	}
	return &TowReasonValidator{llm: llm, log: log}
}

func (v *TowReasonValidator) Validate(ctx context.Context, text string) bool {
	if v == nil || isSkipAnswer(text) {
		return false
	}
	if v.llm == nil {
		return plausibleTowReason(text)
	}
	prompt, err := renderTowReasonPrompt(text)
	if err != nil {
		v.log.Error("render tow reason prompt", "error", err)
		return false
	}
	raw, err := v.llm.Complete(ctx, prompt)
	if errors.Is(err, ai.ErrUnavailable) {
		v.log.Warn("tow reason model unavailable, using heuristic", "error", err)
		return plausibleTowReason(text)
	}
	if err != nil {
		v.log.Warn("tow reason validation failed", "error", err)
		return false
	}
	var verdict struct {
		IsValid *bool `json:"is_valid"`
	}
	if err := ai.DecodeObject(raw, &verdict); err != nil || verdict.IsValid == nil {
		v.log.Warn("tow reason verdict unreadable", "error", err)
		return false
	}
	return *verdict.IsValid
}

// plausibleTowReason accepts answers of at least two words that are not a bare yes/no.
func plausibleTowReason(text string) bool {
	if isSkipAnswer(text) {
		return false
	}
	tokens := strings.Fields(normalize(text))
	if len(tokens) < 2 {
		return false
	}
	_, yesNo := ParseYesNo(text)
	return !yesNo || len(tokens) > 2
}
