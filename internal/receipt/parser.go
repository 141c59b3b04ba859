// Package receipt converts raw OCR text from a scanned receipt into a
// normalized, deduplicated list of line items plus an extracted tax amount
// and a derived subtotal.
//
// Parsing never fails: OCR output is untrusted and noisy, so unrecognizable
// input degrades to an empty-but-valid ParsedReceipt and the caller falls
// back to manual entry. No item is ever fabricated with a price that does
// not appear as a currency-shaped number in the input text.
package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/grouppay/grouppay/internal/models"
	"github.com/grouppay/grouppay/internal/money"
)

var (
	// currencyRe matches a currency-shaped number anywhere in a line:
	// digits with optional thousands separators and exactly two decimals.
	currencyRe = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2})`)

	// itemRe matches an item line: optional leading quantity, free-form
	// name, trailing currency-shaped number (optionally "$"-prefixed).
	itemRe = regexp.MustCompile(`^(\d*)\s*(.*?)\s*\$?\s*(\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2})\s*$`)

	spacesRe = regexp.MustCompile(`\s+`)
	letterRe = regexp.MustCompile(`[a-zA-Z]`)
)

// Config holds the heuristic tables the parser runs on. The summary
// vocabulary and substitutions are locale- and format-specific, so they are
// configuration rather than constants; receipts in other languages swap in
// their own tables.
type Config struct {
	// SummaryWords rejects aggregate lines (totals, balances, gratuity)
	// outright: a line or normalized item name containing one of these
	// words never becomes an item. Matched case-insensitively against
	// whole words.
	SummaryWords []string

	// NoiseTokens are lone tokens dropped as OCR artifacts, e.g. a
	// stray "S" where a dollar sign was misread.
	NoiseTokens []string

	// Substitutions corrects common OCR misreadings in normalized item
	// names, applied as whole-word replacements after uppercasing.
	Substitutions map[string]string
}

// DefaultConfig returns the tables tuned on real scanned receipts.
func DefaultConfig() Config {
	return Config{
		SummaryWords: []string{
			"SUBTOTAL", "SUB-TOTAL",
			"TOTAL",
			"BALANCE", "AMOUNT", "SUM",
			"TIP", "GRATUITY",
			"HST", "GST", "PST",
		},
		NoiseTokens: []string{"S", "$", "§"},
		Substitutions: map[string]string{
			"STERK":   "STEAK",
			"STERKS":  "STEAK",
			"BOTTLES": "BOTTLE",
		},
	}
}

// Parser extracts line items and tax from raw receipt text.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	cfg        Config
	summarySet map[string]bool
	noiseSet   map[string]bool
}

// New creates a Parser with the given tables.
func New(cfg Config) *Parser {
	p := &Parser{
		cfg:        cfg,
		summarySet: make(map[string]bool, len(cfg.SummaryWords)),
		noiseSet:   make(map[string]bool, len(cfg.NoiseTokens)),
	}
	for _, w := range cfg.SummaryWords {
		p.summarySet[strings.ToUpper(w)] = true
	}
	for _, tok := range cfg.NoiseTokens {
		p.noiseSet[strings.ToUpper(tok)] = true
	}
	return p
}

var defaultParser = New(DefaultConfig())

// Parse runs the default parser. See Parser.Parse.
func Parse(raw string) *models.ParsedReceipt {
	return defaultParser.Parse(raw)
}

// Parse converts raw multi-line OCR text into a ParsedReceipt.
//
// Each line is classified before item extraction: summary lines (totals,
// balances) are rejected, tax lines are consumed for their amount, and only
// the remainder is matched against the item pattern. Repeated matches with
// the same normalized name and unit price merge into one item with summed
// quantity, preserving first-seen order. The subtotal is derived from the
// merged items, never read from a "total" line: printed totals may be
// rounded or tip-inclusive and must not leak into item accounting.
func (p *Parser) Parse(raw string) *models.ParsedReceipt {
	type key struct {
		name  string
		price money.Amount
	}

	merged := make(map[key]*models.LineItem)
	var order []key
	var tax money.Amount

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if p.isSummaryLine(line) {
			continue
		}

		// Tax lines are consumed whether or not an amount is found, so a
		// mangled tax line never turns into a bogus item.
		if p.isTaxLine(line) {
			if amt, ok := firstCurrency(line); ok {
				tax = amt
			}
			continue
		}

		item, ok := p.parseItemLine(line)
		if !ok {
			continue
		}

		k := key{name: item.Name, price: item.UnitPrice}
		if existing, seen := merged[k]; seen {
			existing.Quantity += item.Quantity
			continue
		}
		item.ID = uuid.New().String()
		merged[k] = item
		order = append(order, k)
	}

	receipt := &models.ParsedReceipt{Items: make([]models.LineItem, 0, len(order))}
	for _, k := range order {
		receipt.Items = append(receipt.Items, *merged[k])
		receipt.Subtotal += merged[k].TotalPrice()
	}

	receipt.Tax.Amount = tax
	if receipt.Subtotal > 0 {
		receipt.Tax.Percentage = tax.Float64() / receipt.Subtotal.Float64() * 100
	}

	return receipt
}

// isSummaryLine reports whether the line is an aggregate line (total,
// balance, tip) or a lone OCR noise token, neither of which may become an
// item.
func (p *Parser) isSummaryLine(line string) bool {
	upper := strings.ToUpper(line)
	if p.noiseSet[strings.TrimSpace(upper)] {
		return true
	}
	return p.containsSummaryWord(upper)
}

// isTaxLine reports whether the line carries a tax amount. Lines that also
// match the summary vocabulary (e.g. "TAX TOTAL") were already rejected.
func (p *Parser) isTaxLine(line string) bool {
	return containsWord(strings.ToUpper(line), "TAX")
}

func (p *Parser) containsSummaryWord(upper string) bool {
	for word := range p.summarySet {
		if containsWord(upper, word) {
			return true
		}
	}
	return false
}

// parseItemLine matches the item pattern and normalizes the result.
// Lines with no trailing currency-shaped number are noise.
func (p *Parser) parseItemLine(line string) (*models.LineItem, bool) {
	m := itemRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	qty := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return nil, false
		}
		qty = n
	}

	amount, err := money.Parse(m[3])
	if err != nil {
		return nil, false
	}

	name := p.normalizeName(m[2])
	if name == "" || !letterRe.MatchString(name) || p.noiseSet[name] {
		return nil, false
	}
	// Re-check after normalization: OCR sometimes glues summary words onto
	// price fragments that survive the line-level check.
	if p.containsSummaryWord(name) || containsWord(name, "TAX") {
		return nil, false
	}

	// A leading quantity makes the trailing amount the line total when it
	// divides evenly; otherwise the amount is taken as the unit price.
	unitPrice := amount
	if qty > 1 && amount%money.Amount(qty) == 0 {
		unitPrice = amount / money.Amount(qty)
	}

	return &models.LineItem{
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  qty,
	}, true
}

// normalizeName trims, uppercases, collapses internal whitespace, strips
// noise tokens, and applies the OCR substitution table.
func (p *Parser) normalizeName(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	upper = spacesRe.ReplaceAllString(upper, " ")

	words := strings.Fields(upper)
	out := words[:0]
	for i, w := range words {
		if sub, ok := p.cfg.Substitutions[w]; ok {
			w = sub
		}
		// Trailing noise tokens are OCR artifacts ("BURGER S"); leading or
		// internal single letters may be legitimate ("A1 SAUCE").
		if i == len(words)-1 && i > 0 && p.noiseSet[w] {
			continue
		}
		out = append(out, w)
	}

	return strings.Join(out, " ")
}

// firstCurrency returns the first currency-shaped number in the line.
func firstCurrency(line string) (money.Amount, bool) {
	m := currencyRe.FindString(line)
	if m == "" {
		return 0, false
	}
	amt, err := money.Parse(m)
	if err != nil {
		return 0, false
	}
	return amt, true
}

// containsWord reports whether s contains word as a whole word. Both are
// expected to be uppercase already.
func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
