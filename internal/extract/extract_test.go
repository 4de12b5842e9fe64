package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{
			name: "currency marked with thousands separator",
			text: "PAY TO THE ORDER OF\nAmount: $1,234.56",
			want: f64(1234.56),
		},
		{
			name: "protectograph asterisks",
			text: "PAY EXACTLY **500.00** DOLLARS",
			want: f64(500.00),
		},
		{
			name: "bare decimal with dollars suffix",
			text: "enclosed is 43.21 dollars for the appeal",
			want: f64(43.21),
		},
		{
			name: "currency marked wins over asterisks",
			text: "fee **100.00** total $25.00",
			want: f64(25.00),
		},
		{
			name: "no amount",
			text: "thank you for your generosity",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, false)
			if tt.want == nil {
				assert.Nil(t, got.Amount)
				return
			}
			require.NotNil(t, got.Amount)
			assert.InDelta(t, *tt.want, *got.Amount, 0.001)
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "numeric with two digit year",
			text: "Date: 03/15/24",
			want: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "numeric with dashes",
			text: "12-01-2023",
			want: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month name form",
			text: "Dated 5 March 2024",
			want: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "invalid calendar date skipped for later valid one",
			text: "02/30/24 then 03/15/24",
			want: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, false)
			require.NotNil(t, got.CheckDate)
			assert.True(t, got.CheckDate.Equal(tt.want), "got %v, want %v", *got.CheckDate, tt.want)
		})
	}

	t.Run("no date", func(t *testing.T) {
		assert.Nil(t, Parse("no dates here", false).CheckDate)
	})

	t.Run("impossible month rejected", func(t *testing.T) {
		assert.Nil(t, Parse("ref 13/45/2024", false).CheckDate)
	})
}

func TestExtractCheckNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *string
	}{
		{
			name: "labeled check number",
			text: "Check #1234\nPay to the order of",
			want: str("1234"),
		},
		{
			name: "labeled with no word",
			text: "check no. 56789",
			want: str("56789"),
		},
		{
			name: "bare corner number",
			text: "1025\nJohn Smith\n123 Main Street",
			want: str("1025"),
		},
		{
			name: "metadata label disqualified",
			text: "Lockbox Batch 12 Check No: 4567 Sequence 890",
			want: nil,
		},
		{
			name: "amount digits are not a check number",
			text: "Total $1,234.56",
			want: nil,
		},
		{
			// U+212A lowers from 3 bytes to 1, shrinking the lowered text.
			name: "length-changing rune before a bare number",
			text: "K scanned item 123",
			want: str("123"),
		},
		{
			name: "length-changing rune before a labeled number",
			text: "K series Check #1234",
			want: str("1234"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, false)
			if tt.want == nil {
				assert.Nil(t, got.CheckNumber)
				return
			}
			require.NotNil(t, got.CheckNumber)
			assert.Equal(t, *tt.want, *got.CheckNumber)
		})
	}

	t.Run("skipped on buckslips", func(t *testing.T) {
		got := Parse("Check #1234", true)
		assert.Nil(t, got.CheckNumber)
	})
}

func TestDetectMoneyOrder(t *testing.T) {
	assert.True(t, Parse("USPS POSTAL MONEY ORDER", false).MoneyOrder)
	assert.True(t, Parse("western union payment", false).MoneyOrder)
	assert.False(t, Parse("personal check for the order of", false).MoneyOrder)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *string
	}{
		{
			name: "name above address",
			text: "John Smith\n123 Main Street\nSpringfield, IL 62704",
			want: str("John Smith"),
		},
		{
			name: "organization keyword truncates",
			text: "John Smith Family Foundation\n123 Main Street",
			want: str("John Smith"),
		},
		{
			name: "leading organization keyword rejects line",
			text: "Family Foundation\nFirst National Bank",
			want: nil,
		},
		{
			name: "metadata lines skipped",
			text: "Lockbox Detail Report\nPage 2 of 9\nMary Jones\n456 Oak Avenue",
			want: str("Mary Jones"),
		},
		{
			name: "salutation rejected",
			text: "Dear Friends\nThank you kindly",
			want: nil,
		},
		{
			name: "lowercase words rejected",
			text: "thank you for your gift",
			want: nil,
		},
		{
			name: "fallback without address",
			text: "Mary Jones\nHappy to support the cause",
			want: str("Mary Jones"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, true)
			if tt.want == nil {
				assert.Nil(t, got.Name)
				return
			}
			require.NotNil(t, got.Name)
			assert.Equal(t, *tt.want, *got.Name)
		})
	}
}

func TestExtractAddress(t *testing.T) {
	t.Run("full mailing block", func(t *testing.T) {
		got := Parse("John Smith\n123 Main Street\nSpringfield, IL 62704", true)
		require.NotNil(t, got.AddressLine1)
		assert.Equal(t, "123 Main Street", *got.AddressLine1)
		require.NotNil(t, got.City)
		assert.Equal(t, "Springfield", *got.City)
		require.NotNil(t, got.State)
		assert.Equal(t, "IL", *got.State)
		require.NotNil(t, got.ZipCode)
		assert.Equal(t, "62704", *got.ZipCode)
	})

	t.Run("second address line kept", func(t *testing.T) {
		got := Parse("Mary Jones\n456 Oak Avenue\nApt 2B\nPortland, OR 97201", true)
		require.NotNil(t, got.AddressLine1)
		assert.Equal(t, "456 Oak Avenue", *got.AddressLine1)
		require.NotNil(t, got.AddressLine2)
		assert.Equal(t, "Apt 2B", *got.AddressLine2)
		require.NotNil(t, got.City)
		assert.Equal(t, "Portland", *got.City)
	})

	t.Run("zip plus four", func(t *testing.T) {
		got := Parse("789 Pine Road\nAustin, TX 78701-1234", true)
		require.NotNil(t, got.ZipCode)
		assert.Equal(t, "78701-1234", *got.ZipCode)
	})

	t.Run("whole text fallback recovers zip and state", func(t *testing.T) {
		got := Parse("payment enclosed NY 10001 thank you", true)
		require.NotNil(t, got.ZipCode)
		assert.Equal(t, "10001", *got.ZipCode)
		require.NotNil(t, got.State)
		assert.Equal(t, "NY", *got.State)
	})

	t.Run("no address", func(t *testing.T) {
		got := Parse("thank you", true)
		assert.Nil(t, got.AddressLine1)
		assert.Nil(t, got.City)
		assert.Nil(t, got.ZipCode)
	})
}

// Parsing the same text twice must give the same result: extraction has no
// hidden state.
func TestParseDeterministic(t *testing.T) {
	text := "Check #1234\nDate: 03/15/24\n$250.00\nJohn Smith\n123 Main Street\nSpringfield, IL 62704"
	first := Parse(text, false)
	second := Parse(text, false)
	assert.Equal(t, first, second)
}

func TestParseEmptyAndGarbage(t *testing.T) {
	for _, text := range []string{"", "\n\n\n", "!!!@@@###", "   "} {
		got := Parse(text, false)
		assert.Nil(t, got.Amount)
		assert.Nil(t, got.CheckDate)
		assert.Nil(t, got.CheckNumber)
		assert.Nil(t, got.Name)
		assert.False(t, got.MoneyOrder)
	}
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }
