package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"intrastat-assistant/internal/entity"
)

// ConsoleTargetSource asks the operator for the measured shipment weights on
// the terminal. An empty answer skips the reallocation for that invoice.
type ConsoleTargetSource struct {
	in  *bufio.Scanner
	out io.Writer
}

var _ TargetWeightSource = (*ConsoleTargetSource)(nil)

func NewConsoleTargetSource(in io.Reader, out io.Writer) *ConsoleTargetSource {
	return &ConsoleTargetSource{in: bufio.NewScanner(in), out: out}
}

const maxPromptAttempts = 3

func (c *ConsoleTargetSource) Targets(ctx context.Context, invoiceNumber string, provisionalNetKg float64) (entity.ReallocationTarget, bool, error) {
	fmt.Fprintf(c.out, "\nInvoice %s: provisional net weight from the catalog is %.3f kg.\n", invoiceNumber, provisionalNetKg)

	for attempt := 1; attempt <= maxPromptAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return entity.ReallocationTarget{}, false, err
		}
		net, skipped, err := c.askWeight("Measured total NET weight in kg (empty to keep provisional weights): ")
		if err != nil {
			return entity.ReallocationTarget{}, false, err
		}
		if skipped {
			return entity.ReallocationTarget{}, false, nil
		}
		gross, skipped, err := c.askWeight("Measured total GROSS weight in kg: ")
		if err != nil {
			return entity.ReallocationTarget{}, false, err
		}
		if skipped {
			return entity.ReallocationTarget{}, false, nil
		}
		target := entity.ReallocationTarget{NetKg: net, GrossKg: gross}
		if err := target.Validate(); err != nil {
			fmt.Fprintf(c.out, "Invalid weights: %v. Try again.\n", err)
			continue
		}
		return target, true, nil
	}
	return entity.ReallocationTarget{}, false, fmt.Errorf("no valid target weights after %d attempts", maxPromptAttempts)
}

// ConsoleCountryResolver prompts the operator when a product item has no
// usable country of origin. Answers are cached per item code so duplicate
// lines ask only once; an invalid or empty answer leaves the field blank.
type ConsoleCountryResolver struct {
	in    *bufio.Scanner
	out   io.Writer
	asked map[string]string
}

var _ CountryResolver = (*ConsoleCountryResolver)(nil)

func NewConsoleCountryResolver(in io.Reader, out io.Writer) *ConsoleCountryResolver {
	return &ConsoleCountryResolver{in: bufio.NewScanner(in), out: out, asked: map[string]string{}}
}

func (c *ConsoleCountryResolver) Resolve(itemCode, extracted string) string {
	if country := (OverrideCountryResolver{}).Resolve(itemCode, extracted); country != "" {
		return country
	}
	if country, ok := c.asked[itemCode]; ok {
		return country
	}
	fmt.Fprintf(c.out, "Country of origin for %s (2-letter code, empty to leave blank): ", itemCode)
	country := ""
	if c.in.Scan() {
		if v, ok := normalizeCountry(c.in.Text()); ok {
			country = v
		} else if strings.TrimSpace(c.in.Text()) != "" {
			fmt.Fprintf(c.out, "Not a 2-letter code, leaving %s blank.\n", itemCode)
		}
	}
	c.asked[itemCode] = country
	return country
}

func (c *ConsoleTargetSource) askWeight(prompt string) (kg float64, skipped bool, err error) {
	for {
		fmt.Fprint(c.out, prompt)
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return 0, false, fmt.Errorf("read answer: %w", err)
			}
			return 0, true, nil
		}
		answer := strings.TrimSpace(c.in.Text())
		if answer == "" {
			return 0, true, nil
		}
		v, parseErr := strconv.ParseFloat(strings.Replace(answer, ",", ".", 1), 64)
		if parseErr != nil || v < 0 {
			fmt.Fprintf(c.out, "Cannot read %q as a weight in kg.\n", answer)
			continue
		}
		return v, false, nil
	}
}
