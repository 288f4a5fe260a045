package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"spendtrail/internal/models"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.engine = NewEngine()
}

func (s *EngineTestSuite) txn(merchant string, amount float64) *models.Transaction {
	return &models.Transaction{
		Date:     time.Now(),
		Merchant: merchant,
		Amount:   decimal.NewFromFloat(amount),
	}
}

func (s *EngineTestSuite) TestResolveFallsBackWhenNothingMatches() {
	s.Require().NoError(s.engine.Load(models.DefaultRules()))

	s.Equal(models.FallbackCategory, s.engine.Resolve(s.txn("Unknown Merchant B.V.", -10)))
	s.Equal(models.FallbackCategory, s.engine.Resolve(nil))
}

func (s *EngineTestSuite) TestResolveDefaultRules() {
	s.Require().NoError(s.engine.Load(models.DefaultRules()))

	testCases := []struct {
		merchant string
		amount   float64
		expected string
	}{
		{"ALBERT HEIJN 1123 AMSTERDAM", -45.00, "Groceries"},
		{"Picnic by Picnic B.V.", -82.13, "Groceries"},
		{"ESSENT Retail Energie B.V.", -210.00, "Utilities"},
		{"TLS BV inz. OV-Chipkaart", -4.70, "Transportation"},
		{"BELASTINGDIENST APELDOORN", -1200.00, "Government"},
		{"Oranje Spaarrekening XYZ", -500.00, "Internal Transfer"},
	}

	for _, tc := range testCases {
		s.Run(tc.merchant, func() {
			s.Equal(tc.expected, s.engine.Resolve(s.txn(tc.merchant, tc.amount)))
		})
	}
}

func (s *EngineTestSuite) TestHigherPriorityWins() {
	min := decimal.NewFromInt(-10000)
	max := decimal.NewFromInt(-100)
	s.Require().NoError(s.engine.Load([]models.Rule{
		{Pattern: "Albert Heijn", Category: "Groceries", Priority: 1, Source: models.RuleSourceAuthored},
		{Pattern: "Albert Heijn", Category: "Major Grocery Shopping", Priority: 2, Source: models.RuleSourceAuthored, AmountMin: &min, AmountMax: &max},
	}))

	s.Equal("Groceries", s.engine.Resolve(s.txn("Albert Heijn 1123", -45)))
	s.Equal("Major Grocery Shopping", s.engine.Resolve(s.txn("Albert Heijn 1123", -150)))
	s.Equal("Major Grocery Shopping", s.engine.Resolve(s.txn("Albert Heijn 1123", -100)))
	s.Equal("Groceries", s.engine.Resolve(s.txn("Albert Heijn 1123", -99.99)))
}

func (s *EngineTestSuite) TestAmountConstrainedWinsAtEqualPriority() {
	max := decimal.NewFromInt(-50)
	s.Require().NoError(s.engine.Load([]models.Rule{
		{Pattern: "Uber", Category: "Transportation", Priority: 3, Source: models.RuleSourceAuthored},
		{Pattern: "Uber", Category: "Business Travel", Priority: 3, Source: models.RuleSourceAuthored, AmountMax: &max},
	}))

	s.Equal("Business Travel", s.engine.Resolve(s.txn("UBER TRIP", -80)))
	s.Equal("Transportation", s.engine.Resolve(s.txn("UBER TRIP", -20)))
}

func (s *EngineTestSuite) TestLowestSeqBreaksFullTie() {
	s.Require().NoError(s.engine.Load([]models.Rule{
		{Pattern: "KPN", Category: "Utilities", Priority: 1, Source: models.RuleSourceAuthored},
		{Pattern: "KPN", Category: "Subscriptions", Priority: 1, Source: models.RuleSourceAuthored},
	}))

	s.Equal("Utilities", s.engine.Resolve(s.txn("KPN B.V.", -40)))
}

func (s *EngineTestSuite) TestResolveIsDeterministicAcrossRepeats() {
	s.Require().NoError(s.engine.Load(models.DefaultRules()))
	txn := s.txn("Espresso House Amsterdam", -6.50)

	first := s.engine.Resolve(txn)
	for i := 0; i < 50; i++ {
		s.Equal(first, s.engine.Resolve(txn))
	}
}

func (s *EngineTestSuite) TestLoadRejectsMalformedRegexAtomically() {
	s.Require().NoError(s.engine.Load(models.DefaultRules()))
	before := s.engine.Len()

	err := s.engine.Load([]models.Rule{
		{Pattern: "Albert Heijn", Category: "Groceries", Priority: 1, Source: models.RuleSourceAuthored},
		{Pattern: "[unclosed", IsRegex: true, Category: "Broken", Priority: 1, Source: models.RuleSourceAuthored},
	})

	s.Error(err)
	s.Contains(err.Error(), "invalid regex pattern")
	s.Equal(before, s.engine.Len())
	s.Equal("Groceries", s.engine.Resolve(s.txn("Albert Heijn", -10)))
}

func (s *EngineTestSuite) TestAddAssignsIncreasingSeq() {
	first, err := s.engine.Add(models.Rule{Pattern: "Flink", Category: "Groceries", Priority: 1, Source: models.RuleSourceAuthored})
	s.Require().NoError(err)
	second, err := s.engine.Add(models.Rule{Pattern: "Crisp", Category: "Groceries", Priority: 1, Source: models.RuleSourceAuthored})
	s.Require().NoError(err)

	s.Less(first.Seq, second.Seq)
	s.Equal(2, s.engine.Len())
}

func (s *EngineTestSuite) TestHighestMatchingPriority() {
	max := decimal.NewFromInt(-100)
	s.Require().NoError(s.engine.Load([]models.Rule{
		{Pattern: "Albert Heijn", Category: "Groceries", Priority: 1, Source: models.RuleSourceAuthored},
		{Pattern: "Albert Heijn", Category: "Major Grocery Shopping", Priority: 4, Source: models.RuleSourceAuthored, AmountMax: &max},
	}))

	priority, ok := s.engine.HighestMatchingPriority(s.txn("Albert Heijn", -150))
	s.True(ok)
	s.Equal(4, priority)

	priority, ok = s.engine.HighestMatchingPriority(s.txn("Albert Heijn", -20))
	s.True(ok)
	s.Equal(1, priority)

	_, ok = s.engine.HighestMatchingPriority(s.txn("Nobody", -20))
	s.False(ok)
}

func (s *EngineTestSuite) TestRulesSnapshotOrderedByPrecedence() {
	max := decimal.NewFromInt(-100)
	s.Require().NoError(s.engine.Load([]models.Rule{
		{Pattern: "a", Category: "A", Priority: 1, Source: models.RuleSourceAuthored},
		{Pattern: "b", Category: "B", Priority: 3, Source: models.RuleSourceAuthored},
		{Pattern: "c", Category: "C", Priority: 3, Source: models.RuleSourceAuthored, AmountMax: &max},
	}))

	snapshot := s.engine.Rules()
	s.Require().Len(snapshot, 3)
	s.Equal("C", snapshot[0].Category)
	s.Equal("B", snapshot[1].Category)
	s.Equal("A", snapshot[2].Category)
}
