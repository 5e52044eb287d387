package game

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// WordProvider supplies distinct candidate words for a turn.
type WordProvider interface {
	Words(count int) ([]string, error)
}

var DefaultWords = []string{
	"apple", "car", "house", "elephant", "computer", "guitar", "mountain", "ocean",
	"pizza", "football", "banana", "bicycle", "castle", "dragon", "rainbow", "rocket",
	"pencil", "umbrella", "giraffe", "volcano", "lighthouse", "snowman", "airplane", "camera",
	"cactus", "penguin", "treasure", "ladder", "butterfly", "window", "candle", "island",
	"spider", "octopus", "bridge", "tractor", "kite", "anchor", "robot", "sandwich",
}

// ListProvider picks words from a fixed list.
type ListProvider struct {
	words []string
}

// NewListProvider trims and de-duplicates words, case-insensitively.
func NewListProvider(words []string) *ListProvider {
	seen := make(map[string]struct{}, len(words))
	list := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		list = append(list, w)
	}
	return &ListProvider{words: list}
}

func (p *ListProvider) Len() int {
	return len(p.words)
}

func (p *ListProvider) Words(count int) ([]string, error) {
	if count <= 0 || count > len(p.words) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrWordsExhausted, count, len(p.words))
	}

	shuffled := make([]string, len(p.words))
	copy(shuffled, p.words)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:count], nil
}

// ReadWords reads one word per line, skipping blanks and # comments.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// maskWord hides every character of word behind a space-separated underscore.
func maskWord(word string) string {
	n := utf8.RuneCountInString(word)
	if n == 0 {
		return ""
	}
	return strings.Repeat("_ ", n-1) + "_"
}
