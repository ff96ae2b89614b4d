package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/krxflow/internal/domain/calendar"
)

// ErrNoInput 입력 스트림 종료
var ErrNoInput = errors.New("no input")

// Prompter reads answers from an interactive terminal
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter over in/out
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Date returns arg parsed as YYYYMMDD, re-prompting until a valid date is entered
func (p *Prompter) Date(arg string) (time.Time, error) {
	candidate := arg
	asked := false
	for {
		if candidate != "" || asked {
			d, err := calendar.ParseDate(candidate)
			if err == nil {
				return d, nil
			}
			fmt.Fprintf(p.out, "잘못된 날짜입니다 (%s). YYYYMMDD 형식으로 입력하세요.\n", strings.TrimSpace(candidate))
		}

		fmt.Fprint(p.out, "기준일자 (YYYYMMDD): ")
		line, err := p.readLine()
		if err != nil {
			return time.Time{}, err
		}
		candidate = line
		asked = true
	}
}

// Confirm asks a y/n question until one of y/yes/n/no is entered
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n): ", question)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "y 또는 n 을 입력하세요.")
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
