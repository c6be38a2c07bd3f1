package strategy

import (
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// Preset names a built-in rule list.
type Preset string

const (
	// PresetTwoMA trades the medium/long crossover only.
	PresetTwoMA Preset = "two_ma"
	// PresetThreeMA is the full six rule set over three averages.
	PresetThreeMA Preset = "three_ma"
	// PresetThreeMARSI is PresetThreeMA with an overbought RSI exit
	// evaluated before everything else.
	PresetThreeMARSI Preset = "three_ma_rsi"
)

// Presets lists every built-in preset name.
func Presets() []Preset {
	return []Preset{PresetTwoMA, PresetThreeMA, PresetThreeMARSI}
}

// PresetRules builds the ordered rule list for a preset from the
// configured periods. The order is part of the strategy: buys are tried
// before sells in the three average sets, and the first match wins.
func PresetRules(cfg Config) ([]Rule, error) {
	cross := Rule{
		Kind:         RuleGoldenCrossBuy,
		MediumPeriod: cfg.MediumPeriod,
		LongPeriod:   cfg.LongPeriod,
	}
	deathCross := Rule{
		Kind:         RuleDeathCrossSell,
		MediumPeriod: cfg.MediumPeriod,
		LongPeriod:   cfg.LongPeriod,
	}

	switch Preset(cfg.Preset) {
	case PresetTwoMA:
		return []Rule{cross, deathCross}, nil

	case PresetThreeMA:
		return threeMARules(cfg), nil

	case PresetThreeMARSI:
		rules := []Rule{{
			Kind:         RuleRSISell,
			RSIPeriod:    cfg.RSIPeriod,
			RSIThreshold: cfg.RSIOverbought,
		}}
		return append(rules, threeMARules(cfg)...), nil

	default:
		return nil, errors.Newf(errors.ErrCodeUnknownPreset, "unknown strategy preset %q", cfg.Preset)
	}
}

func threeMARules(cfg Config) []Rule {
	short, medium, long := cfg.ShortPeriod, cfg.MediumPeriod, cfg.LongPeriod
	return []Rule{
		{Kind: RuleGoldenCrossBuy, MediumPeriod: medium, LongPeriod: long},
		{Kind: RuleTrendBuy, ShortPeriod: short, MediumPeriod: medium, LongPeriod: long},
		{Kind: RuleHalfBuy, ShortPeriod: short, MediumPeriod: medium, LongPeriod: long},
		{Kind: RuleFullSell, ShortPeriod: short, MediumPeriod: medium, LongPeriod: long},
		{Kind: RuleDeathCrossSell, MediumPeriod: medium, LongPeriod: long},
		{Kind: RuleHalfSell, ShortPeriod: short, MediumPeriod: medium, LongPeriod: long},
	}
}
