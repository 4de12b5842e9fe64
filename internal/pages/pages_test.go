package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorscan/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Role
	}{
		{
			name: "scanner check marker",
			text: "FRONT IMAGE - CHECK 0012\nthank you donation appeal",
			want: RoleCheck,
		},
		{
			name: "scanner document marker",
			text: "Front Image - Document 0013\npay to the order dollars routing",
			want: RoleBuckslip,
		},
		{
			name: "check indicators outnumber",
			text: "PAY TO THE ORDER OF\nfive hundred DOLLARS\nrouting 021000021",
			want: RoleCheck,
		},
		{
			name: "buckslip indicators outnumber",
			text: "Dear Friend,\nthank you for your donation to our appeal",
			want: RoleBuckslip,
		},
		{
			name: "tie is unknown",
			text: "dollars donation",
			want: RoleUnknown,
		},
		{
			name: "empty is unknown",
			text: "",
			want: RoleUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

const (
	checkText    = "pay to the order of\ndollars\nrouting"
	buckslipText = "dear friend\nthank you for your donation"
	unknownText  = "illegible smudge"
)

func mkPages(texts ...string) []Page {
	pgs := make([]Page, len(texts))
	for i, text := range texts {
		pgs[i] = Page{Number: i + 1, ImagePath: "page.png", Text: text}
	}
	return pgs
}

func TestBuildUnitsMail(t *testing.T) {
	// Mail batches take every page as a standalone check, whatever the
	// text looks like.
	units := BuildUnits(mkPages(buckslipText, unknownText, checkText), models.KindMail)
	require.Len(t, units, 3)
	for i, unit := range units {
		assert.Equal(t, i+1, unit.Check.Number)
		assert.Nil(t, unit.Buckslip)
	}
}

func TestBuildUnitsDepositScan(t *testing.T) {
	t.Run("alternating pairs", func(t *testing.T) {
		units := BuildUnits(mkPages(checkText, buckslipText, checkText, buckslipText), models.KindDepositScan)
		require.Len(t, units, 2)

		assert.Equal(t, 1, units[0].Check.Number)
		require.NotNil(t, units[0].Buckslip)
		assert.Equal(t, 2, units[0].Buckslip.Number)

		assert.Equal(t, 3, units[1].Check.Number)
		require.NotNil(t, units[1].Buckslip)
		assert.Equal(t, 4, units[1].Buckslip.Number)
	})

	t.Run("unknown between pair is skipped", func(t *testing.T) {
		units := BuildUnits(mkPages(checkText, unknownText, buckslipText), models.KindDepositScan)
		require.Len(t, units, 1)
		require.NotNil(t, units[0].Buckslip)
		assert.Equal(t, 3, units[0].Buckslip.Number)
	})

	t.Run("consecutive checks stay unpaired until their own buckslip", func(t *testing.T) {
		units := BuildUnits(mkPages(checkText, checkText, buckslipText), models.KindDepositScan)
		require.Len(t, units, 2)
		assert.Nil(t, units[0].Buckslip)
		require.NotNil(t, units[1].Buckslip)
		assert.Equal(t, 3, units[1].Buckslip.Number)
	})

	t.Run("unknown after pair does not merge units", func(t *testing.T) {
		units := BuildUnits(mkPages(checkText, buckslipText, unknownText, checkText, buckslipText), models.KindDepositScan)
		require.Len(t, units, 2)
		assert.Equal(t, 4, units[1].Check.Number)
		require.NotNil(t, units[1].Buckslip)
		assert.Equal(t, 5, units[1].Buckslip.Number)
	})

	t.Run("orphan buckslip dropped", func(t *testing.T) {
		units := BuildUnits(mkPages(buckslipText, checkText), models.KindDepositScan)
		require.Len(t, units, 1)
		assert.Equal(t, 2, units[0].Check.Number)
		assert.Nil(t, units[0].Buckslip)
	})

	t.Run("trailing check without buckslip", func(t *testing.T) {
		units := BuildUnits(mkPages(checkText, buckslipText, checkText), models.KindDepositScan)
		require.Len(t, units, 2)
		assert.Nil(t, units[1].Buckslip)
	})

	t.Run("all unknown yields no units", func(t *testing.T) {
		units := BuildUnits(mkPages(unknownText, unknownText), models.KindDepositScan)
		assert.Empty(t, units)
	})
}
