package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/model"
	"github.com/vkarev/rotagen/internal/repository"
	"github.com/vkarev/rotagen/internal/service"
)

// fakeSettingRepo is an in-memory settingRepository.
type fakeSettingRepo struct {
	rows map[string]model.Setting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{rows: map[string]model.Setting{}}
}

func (f *fakeSettingRepo) Get(_ context.Context, key string) (*model.Setting, error) {
	row, ok := f.rows[key]
	if !ok {
		return nil, repository.ErrSettingNotFound
	}
	return &row, nil
}

func (f *fakeSettingRepo) List(_ context.Context) ([]model.Setting, error) {
	out := make([]model.Setting, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeSettingRepo) Upsert(_ context.Context, s *model.Setting) error {
	f.rows[s.Key] = *s
	return nil
}

func TestSettingsService_DefaultsWhenEmpty(t *testing.T) {
	svc := service.NewSettingsService(newFakeSettingRepo())

	bag, err := svc.Policy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, bag.MonthlyOvertimeMax)
	assert.Equal(t, 120, bag.YearlyOvertimeMax)
	assert.False(t, bag.PairBreaking.Enabled)
	assert.Equal(t, 8, bag.PairBreaking.OverlapThreshold)
	assert.Equal(t, 6, bag.PairBreaking.WindowDays)
	assert.True(t, bag.PairBreaking.AntiAlign)
}

func TestSettingsService_RoundTrip(t *testing.T) {
	svc := service.NewSettingsService(newFakeSettingRepo())
	ctx := context.Background()

	bag := service.DefaultPolicy()
	bag.PairBreaking.Enabled = true
	bag.PairBreaking.HoursBudget = 0
	bag.PairBreaking.InternIDs = []string{"E09"}
	require.NoError(t, svc.SavePolicy(ctx, bag))

	got, err := svc.Policy(ctx)
	require.NoError(t, err)
	assert.True(t, got.PairBreaking.Enabled)
	assert.Equal(t, 0, got.PairBreaking.HoursBudget)
	assert.Equal(t, []string{"E09"}, got.PairBreaking.InternIDs)
}
