package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"chatbot/internal/domain"
)

// Sink receives text fragments in arrival order.
type Sink interface {
	Write(fragment string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(fragment string) error

// Write calls f(fragment).
func (f SinkFunc) Write(fragment string) error { return f(fragment) }

// Result summarises a dispatched stream.
type Result struct {
	FullText    string
	ReceivedAny bool
	Fragments   int
}

// Dispatch drains src into sink. Empty fragments are dropped, everything else
// is forwarded once and concatenated into Result.FullText. A failing source,
// sink or context ends the dispatch early; the partial Result is returned with
// the error. src is always closed.
func Dispatch(ctx context.Context, src domain.FragmentStream, sink Sink) (Result, error) {
	defer src.Close()

	var (
		res  Result
		full strings.Builder
	)
	for {
		if err := ctx.Err(); err != nil {
			res.FullText = full.String()
			return res, err
		}
		frag, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.FullText = full.String()
			return res, fmt.Errorf("receive fragment: %w", err)
		}
		if frag == "" {
			continue
		}
		if err := sink.Write(frag); err != nil {
			res.FullText = full.String()
			return res, fmt.Errorf("write fragment: %w", err)
		}
		full.WriteString(frag)
		res.ReceivedAny = true
		res.Fragments++
	}
	res.FullText = full.String()
	return res, nil
}

// SliceStream replays a fixed list of fragments, then reports Err (io.EOF when
// nil). It backs offline generators and tests.
type SliceStream struct {
	Fragments []string
	Err       error
	Closed    bool
	pos       int
}

// FromSlice returns a stream over fragments that ends with io.EOF.
func FromSlice(fragments ...string) *SliceStream {
	return &SliceStream{Fragments: fragments}
}

// Recv returns the next fragment.
func (s *SliceStream) Recv() (string, error) {
	if s.pos < len(s.Fragments) {
		f := s.Fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

// Close marks the stream closed.
func (s *SliceStream) Close() error {
	s.Closed = true
	return nil
}
