package frames

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/models"
)

type mockFrameSource struct {
	frames map[string][]models.FrameFact // "account/period" -> facts
}

func (m *mockFrameSource) Frame(_ context.Context, account, period string) ([]models.FrameFact, error) {
	facts, ok := m.frames[account+"/"+period]
	if !ok {
		return nil, models.NewNotFoundError("", account, errors.New("404"))
	}
	return facts, nil
}

func fact(name string, value int64) models.FrameFact {
	return models.FrameFact{EntityName: name, CIK: "000000" + name[:1], Value: value}
}

func TestRank(t *testing.T) {
	operating := []models.FrameFact{
		fact("Apple", 119), fact("Microsoft", 83), fact("Orphan", 10), fact("Zero", 5), fact("Boeing", -3),
	}
	assets := []models.FrameFact{
		fact("Apple", 352), fact("Microsoft", 364), fact("Zero", 0), fact("Boeing", 137), fact("NoIncome", 50),
	}

	rows := Rank(operating, assets)
	require.Len(t, rows, 3)

	assert.Equal(t, "Apple", rows[0].EntityName)
	assert.Equal(t, 0.34, rows[0].Ratio)
	assert.Equal(t, int64(119), rows[0].Numerator)
	assert.Equal(t, int64(352), rows[0].Denominator)

	assert.Equal(t, "Microsoft", rows[1].EntityName)
	assert.Equal(t, 0.23, rows[1].Ratio)

	assert.Equal(t, "Boeing", rows[2].EntityName)
	assert.Equal(t, -0.02, rows[2].Ratio)
}

func TestRank_TiesByName(t *testing.T) {
	rows := Rank(
		[]models.FrameFact{fact("b", 1), fact("a", 1)},
		[]models.FrameFact{fact("a", 2), fact("b", 2)},
	)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].EntityName)
	assert.Equal(t, "b", rows[1].EntityName)
}

func TestService_Rank(t *testing.T) {
	source := &mockFrameSource{frames: map[string][]models.FrameFact{
		"OperatingIncomeLoss/CY2022": {fact("Apple", 119), fact("Microsoft", 83)},
		"Assets/CY2022Q4I":           {fact("Apple", 352), fact("Microsoft", 364)},
	}}
	svc := NewService(source, common.NewSilentLogger())

	rows, err := svc.Rank(context.Background(), Request{
		NumeratorAccount:   "OperatingIncomeLoss",
		NumeratorPeriod:    "CY2022",
		DenominatorAccount: "Assets",
		DenominatorPeriod:  "CY2022Q4I",
		Limit:              1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Apple", rows[0].EntityName)
}

func TestService_RankMissingFrame(t *testing.T) {
	svc := NewService(&mockFrameSource{}, common.NewSilentLogger())

	_, err := svc.Rank(context.Background(), Request{
		NumeratorAccount: "OperatingIncomeLoss", NumeratorPeriod: "CY1900",
		DenominatorAccount: "Assets", DenominatorPeriod: "CY1900",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
