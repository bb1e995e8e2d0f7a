package tokenizer

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

func getCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	return codec, codecErr
}

// CountTokens returns the cl100k token count of text.
func CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	c, err := getCodec()
	if err != nil {
		return 0, fmt.Errorf("load tokenizer: %w", err)
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	return len(ids), nil
}

// Truncate cuts text to at most maxTokens tokens. It reports whether text was cut.
func Truncate(text string, maxTokens int) (string, bool, error) {
	if maxTokens <= 0 {
		return "", text != "", nil
	}
	c, err := getCodec()
	if err != nil {
		return "", false, fmt.Errorf("load tokenizer: %w", err)
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return "", false, fmt.Errorf("encode: %w", err)
	}
	if len(ids) <= maxTokens {
		return text, false, nil
	}
	out, err := c.Decode(ids[:maxTokens])
	if err != nil {
		return "", false, fmt.Errorf("decode: %w", err)
	}
	return out, true, nil
}
