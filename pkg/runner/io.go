package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

type inputResult struct {
	text string
	err  error
}

// linePump reads lines in the background so Input can honor ctx without losing lines.
type linePump struct {
	reader    *bufio.Reader
	sanitizer Sanitizer
	lines     chan inputResult
	once      sync.Once
}

func newLinePump(r io.Reader) *linePump {
	return &linePump{reader: bufio.NewReader(r)}
}

func (p *linePump) start() {
	p.once.Do(func() {
		p.lines = make(chan inputResult)
		go p.pump()
	})
}

func (p *linePump) pump() {
	defer close(p.lines)
	for {
		text, err := p.reader.ReadString('\n')
		if text != "" {
			p.lines <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				p.lines <- inputResult{err: err}
			}
			return
		}
	}
}

// next returns the next sanitized line. Lines the sanitizer refuses are reported
// through reject and skipped.
func (p *linePump) next(ctx context.Context, reject func(error)) (string, error) {
	p.start()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-p.lines:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := p.sanitizer.Clean(res.text)
			if err != nil {
				reject(err)
				continue
			}
			return clean, nil
		}
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
