package post

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTopic     = errors.New("topic must not be empty")
	ErrInvalidLength  = errors.New("length must be one of short, medium, long")
	ErrNegativeImages = errors.New("image count must not be negative")
)

type Length string

const (
	Short  Length = "short"
	Medium Length = "medium"
	Long   Length = "long"
)

var lengthGuidelines = map[Length]string{
	Short:  "300-500 words",
	Medium: "800-1200 words",
	Long:   "1500-2500 words",
}

func ParseLength(s string) (Length, error) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lengthGuidelines[l]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	return l, nil
}

// Guideline returns the target word range. Unknown lengths get the medium
// range.
func (l Length) Guideline() string {
	if g, ok := lengthGuidelines[l]; ok {
		return g
	}
	return lengthGuidelines[Medium]
}

// Request is the immutable input of one generation run.
type Request struct {
	Topic       string
	Language    string
	Tone        string
	Length      Length
	UseResearch bool
	Author      string
	ImageCount  int
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrEmptyTopic
	}
	if _, ok := lengthGuidelines[r.Length]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLength, r.Length)
	}
	if r.ImageCount < 0 {
		return ErrNegativeImages
	}
	return nil
}
