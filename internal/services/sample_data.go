package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"spendtrail/internal/models"
)

// sampleDataGenerator produces realistic-looking bank transactions for demos
// and tests. Roughly two thirds hit a known merchant so the default rules
// have something to categorize; the rest are random.
type sampleDataGenerator struct {
	faker *gofakeit.Faker
}

// NewSampleDataGenerator creates a deterministic generator for the given seed
func NewSampleDataGenerator(seed uint64) SampleDataGeneratorInterface {
	return &sampleDataGenerator{
		faker: gofakeit.New(seed),
	}
}

var knownMerchants = []struct {
	name     string
	minSpend float64
	maxSpend float64
}{
	{"Albert Heijn 1123 AMSTERDAM", 5, 180},
	{"Picnic by Picnic B.V.", 20, 120},
	{"Crisp B.V.", 15, 90},
	{"ESSENT Retail Energie", 80, 320},
	{"Waternet Amsterdam", 10, 45},
	{"KPN B.V.", 25, 75},
	{"UBER TRIP HELP.UBER.COM", 6, 55},
	{"TLS BV inz. OV-Chipkaart", 2, 40},
	{"KINDERGARDEN Nederland", 400, 1600},
	{"Espresso House Amsterdam", 3, 15},
	{"BELASTINGDIENST APELDOORN", 50, 900},
	{"Gemeente Amsterdam", 30, 450},
}

func (g *sampleDataGenerator) GenerateTransactions(startDate, endDate time.Time, count int) []*models.Transaction {
	span := endDate.Sub(startDate)
	txns := make([]*models.Transaction, 0, count)

	for i := 0; i < count; i++ {
		offsetHours := g.faker.IntRange(0, int(span.Hours()))
		date := startDate.Add(time.Duration(offsetHours) * time.Hour)

		var merchant string
		var amount decimal.Decimal
		switch {
		case i%10 == 0:
			// salary credit
			merchant = g.faker.Company() + " Payroll"
			amount = decimal.NewFromFloat(g.faker.Float64Range(1800, 4500)).Round(2)
		case i%3 == 0:
			merchant = g.faker.Company()
			amount = decimal.NewFromFloat(-g.faker.Float64Range(1, 250)).Round(2)
		default:
			known := knownMerchants[g.faker.IntRange(0, len(knownMerchants)-1)]
			merchant = known.name
			amount = decimal.NewFromFloat(-g.faker.Float64Range(known.minSpend, known.maxSpend)).Round(2)
		}

		txns = append(txns, &models.Transaction{
			Date:        date.Truncate(24 * time.Hour),
			Amount:      amount,
			Merchant:    merchant,
			Description: g.faker.Sentence(4),
			RecordIndex: i,
		})
	}

	return txns
}

// GenerateCSV renders generated transactions in the default import format,
// useful for exercising the full import path end to end
func (g *sampleDataGenerator) GenerateCSV(startDate, endDate time.Time, count int) string {
	var b strings.Builder
	b.WriteString(`"Date";"Name / Description";"Account";"Counterparty";"Code";"Debit/credit";"Amount (EUR)";"Transaction type";"Notifications"` + "\n")

	for _, txn := range g.GenerateTransactions(startDate, endDate, count) {
		direction := "Credit"
		amount := txn.Amount
		if txn.IsDebit() {
			direction = "Debit"
			amount = amount.Neg()
		}

		fmt.Fprintf(&b, "\"%s\";\"%s\";\"%s\";\"%s\";\"BA\";\"%s\";\"%s\";\"Payment terminal\";\"%s\"\n",
			txn.Date.Format("20060102"),
			txn.Merchant,
			g.faker.Numerify("NL##INGB##########"),
			g.faker.Numerify("NL##ABNA##########"),
			direction,
			strings.ReplaceAll(amount.StringFixed(2), ".", ","),
			txn.Description,
		)
	}

	return b.String()
}
