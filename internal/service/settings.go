package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/vkarev/rotagen/internal/model"
	"github.com/vkarev/rotagen/internal/repository"
)

// PairBreakingSettings is the stored pair_breaking block of the policy bag.
type PairBreakingSettings struct {
	Enabled          bool           `json:"enabled"`
	OverlapThreshold int            `json:"overlap_threshold"`
	WindowDays       int            `json:"window_days"`
	MaxOps           int            `json:"max_ops"`
	HoursBudget      int            `json:"hours_budget"`
	AntiAlign        bool           `json:"anti_align"`
	PostDesyncAll    bool           `json:"post_desync_all"`
	FixedPairs       [][2]string    `json:"fixed_pairs"`
	InternIDs        []string       `json:"intern_ids"`
	NormByEmployee   map[string]int `json:"norm_by_employee"`
}

// PolicyBag is the full set of scheduling knobs.
type PolicyBag struct {
	MonthlyOvertimeMax int                  `json:"monthly_overtime_max"`
	YearlyOvertimeMax  int                  `json:"yearly_overtime_max"`
	PairBreaking       PairBreakingSettings `json:"pair_breaking"`
}

// DefaultPolicy returns the policy used when nothing is stored.
func DefaultPolicy() PolicyBag {
	return PolicyBag{
		MonthlyOvertimeMax: 10,
		YearlyOvertimeMax:  120,
		PairBreaking: PairBreakingSettings{
			Enabled:          false,
			OverlapThreshold: 8,
			WindowDays:       6,
			MaxOps:           4,
			HoursBudget:      12,
			AntiAlign:        true,
			PostDesyncAll:    true,
		},
	}
}

type settingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, s *model.Setting) error
}

// SettingsService loads and stores the policy bag.
type SettingsService struct {
	repo settingRepository
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo settingRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

const policyKey = "policy"

// Policy returns the stored policy merged over the defaults.
func (s *SettingsService) Policy(ctx context.Context) (PolicyBag, error) {
	bag := DefaultPolicy()
	row, err := s.repo.Get(ctx, policyKey)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return bag, nil
	}
	if err != nil {
		return bag, err
	}
	if err := json.Unmarshal(row.Value, &bag); err != nil {
		return DefaultPolicy(), fmt.Errorf("decoding stored policy: %w", err)
	}
	return bag, nil
}

// SavePolicy stores a new policy bag.
func (s *SettingsService) SavePolicy(ctx context.Context, bag PolicyBag) error {
	raw, err := json.Marshal(bag)
	if err != nil {
		return fmt.Errorf("encoding policy: %w", err)
	}
	return s.repo.Upsert(ctx, &model.Setting{Key: policyKey, Value: datatypes.JSON(raw)})
}
