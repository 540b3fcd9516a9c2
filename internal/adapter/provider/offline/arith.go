package offline

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// exprCandidate matches runs of characters that can form an arithmetic
	// expression inside free text.
	exprCandidate = regexp.MustCompile(`[0-9.()+\-*/^×÷ ]{3,}`)
	numberToken   = regexp.MustCompile(`\d+(\.\d+)?`)
	letterTimes   = regexp.MustCompile(`(\d)\s*[xX]\s*(\d)`)

	// Dates, year ranges and phone numbers are written with unspaced
	// separators and are never questions about arithmetic.
	notArithmetic = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`),
		regexp.MustCompile(`^\d{4}-\d{1,4}$`),
		regexp.MustCompile(`^(\d{3}-)?\d{3}-\d{4}$`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	}
)

var errNotExpression = errors.New("not an arithmetic expression")

// findExpression returns the first arithmetic expression in text together
// with its value.
// "3 x 4" is read as multiplication; "2x + 3" is algebra and is skipped.
func findExpression(text string) (string, float64, bool) {
	for {
		next := letterTimes.ReplaceAllString(text, "${1}×${2}")
		if next == text {
			break
		}
		text = next
	}

	for _, m := range exprCandidate.FindAllString(text, -1) {
		candidate := strings.TrimSpace(m)
		if len(numberToken.FindAllString(candidate, 2)) < 2 || !strings.ContainsAny(candidate, "+-*/^×÷") {
			continue
		}
		if looksLikeNotation(candidate) {
			continue
		}
		v, err := evaluate(candidate)
		if err != nil {
			continue
		}
		return candidate, v, true
	}
	return "", 0, false
}

func looksLikeNotation(candidate string) bool {
	for _, re := range notArithmetic {
		if re.MatchString(candidate) {
			return true
		}
	}
	return false
}

// evaluate computes +, -, *, /, ^ and parentheses with the usual precedence.
// "×" and "÷" are accepted as operators.
func evaluate(expr string) (float64, error) {
	r := strings.NewReplacer(" ", "", "×", "*", "÷", "/")
	p := &parser{src: r.Replace(expr)}
	if p.src == "" {
		return 0, errNotExpression
	}

	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New("result out of range")
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) sum() (float64, error) {
	v, err := p.product()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++
		rhs, err := p.product()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *parser) product() (float64, error) {
	v, err := p.power()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return v, nil
		}
		p.pos++
		rhs, err := p.power()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
			continue
		}
		if rhs == 0 {
			return 0, errors.New("division by zero")
		}
		v /= rhs
	}
}

// power is right associative: 2^3^2 = 2^9.
func (p *parser) power() (float64, error) {
	base, err := p.unary()
	if err != nil {
		return 0, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.power()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) unary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return -v, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.sum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for c := p.peek(); (c >= '0' && c <= '9') || c == '.'; c = p.peek() {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at %d", start)
	}
	return strconv.ParseFloat(p.src[start:p.pos], 64)
}

// formatNumber prints integers without a fractional part and trims trailing
// zeros otherwise.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
