package builtins

import "gpwquant/internal/strategy"

// RegisterAll adds every built-in preset to the registry. Preset names double
// as the strategy column in generated signal tables.
func RegisterAll(r *strategy.Registry) {
	// Momentum family. The plain "momentum" preset needs a strong move before
	// entering; the tsmom variants follow the sign of the trailing return.
	r.Register(NewMomentum("momentum", 5, 0.05, -0.05, false, false))
	r.Register(NewMomentum("momentum_tsmom_20d", 20, 0.0, 0.0, false, false))
	r.Register(NewMomentum("momentum_tsmom_60d", 60, 0.0, 0.0, false, false))
	r.Register(NewMomentum("momentum_tsmom_120d", 120, 0.0, 0.0, false, false))
	r.Register(NewMomentum("momentum_tsmom_60d_longonly", 60, 0.0, 0.0, true, false))
	r.Register(NewMomentum("momentum_60d_loose", 60, 0.03, -0.03, false, false))
	r.Register(NewMomentum("momentum_120d_loose", 120, 0.05, -0.05, false, false))
	r.Register(NewMomentum("momentum_252d_longonly", 252, 0.0, 0.0, true, false))

	// Mean-reversion family.
	r.Register(NewMeanReversion("mean_reversion", 20, 1.5, false, false))
	r.Register(NewMeanReversion("mean_reversion_20d_longonly", 20, 1.5, true, false))
	r.Register(NewMeanReversion("mean_reversion_50d_longonly", 50, 2.0, true, false))
	r.Register(NewMeanReversion("mean_reversion_5d_longonly", 5, 1.0, true, false))
	r.Register(NewMeanReversion("mean_reversion_20d_shortonly", 20, 2.0, false, true))

	// RSI family.
	r.Register(NewRSI("rsi_14d_basic", 14, 30.0, 70.0, false))
	r.Register(NewRSI("rsi_14d_longonly", 14, 30.0, 70.0, true))
	r.Register(NewRSI("rsi_7d", 7, 30.0, 70.0, false))
	r.Register(NewRSI("rsi_7d_longonly", 7, 30.0, 70.0, true))
	r.Register(NewRSI("rsi_30d", 30, 30.0, 70.0, false))
	r.Register(NewRSI("rsi_30d_longonly", 30, 30.0, 70.0, true))
}
