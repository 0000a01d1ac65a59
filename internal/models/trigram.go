// ABOUTME: Trigram rows, sentinel tokens and row selection patterns
// ABOUTME: Shared vocabulary between the chain store and the generator
package models

const (
	// Begin marks the start of every ingested message.
	Begin = "#beg#"
	// End marks the end of every ingested message.
	End = "#end#"
	// NotFound is emitted when a lookup has no matching row.
	NotFound = "Not found"
)

// Trigram is one stored 3-token window and how many times it was observed.
type Trigram struct {
	Lexeme1 string `json:"lexeme1" yaml:"lexeme1"`
	Lexeme2 string `json:"lexeme2" yaml:"lexeme2"`
	Lexeme3 string `json:"lexeme3" yaml:"lexeme3"`
	Count   int64  `json:"count" yaml:"count"`
}

// Placeholder is the row a lookup falls back to when nothing matches.
func Placeholder() Trigram {
	return Trigram{Lexeme1: Begin, Lexeme2: NotFound, Lexeme3: End}
}

// Windows pads tokens with the sentinels and returns every contiguous
// 3-token window. No tokens means no windows.
func Windows(tokens []string) []Trigram {
	if len(tokens) == 0 {
		return nil
	}
	seq := make([]string, 0, len(tokens)+2)
	seq = append(seq, Begin)
	seq = append(seq, tokens...)
	seq = append(seq, End)

	out := make([]Trigram, 0, len(seq)-2)
	for i := 0; i+2 < len(seq); i++ {
		out = append(out, Trigram{Lexeme1: seq[i], Lexeme2: seq[i+1], Lexeme3: seq[i+2]})
	}
	return out
}

// Pattern selects trigram rows. Empty position fields match anything.
// Any, when set, matches rows holding that token in any position.
type Pattern struct {
	Lexeme1 string
	Lexeme2 string
	Lexeme3 string
	Any     string
}

// StartPattern matches rows that open a message.
func StartPattern() Pattern { return Pattern{Lexeme1: Begin} }

// WordPattern matches rows containing word anywhere.
func WordPattern(word string) Pattern { return Pattern{Any: word} }

// ForwardPattern matches rows continuing the pair (a, b) to the right.
func ForwardPattern(a, b string) Pattern { return Pattern{Lexeme1: a, Lexeme2: b} }

// BackwardPattern matches rows continuing the pair (a, b) to the left.
func BackwardPattern(a, b string) Pattern { return Pattern{Lexeme2: a, Lexeme3: b} }
