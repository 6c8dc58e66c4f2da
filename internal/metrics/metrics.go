package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Encounter metrics
var (
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStepsTotal,
			Help: HelpTextStepsTotal,
		},
		[]string{LabelZone},
	)

	ZoneChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameZoneChecksTotal,
			Help: HelpTextZoneChecksTotal,
		},
		[]string{LabelZone, LabelResult},
	)

	EncountersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEncountersTotal,
			Help: HelpTextEncountersTotal,
		},
		[]string{LabelZone},
	)

	EncountersAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEncountersAborted,
			Help: HelpTextEncountersAborted,
		},
		[]string{LabelZone},
	)

	BattlesEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBattlesEndedTotal,
			Help: HelpTextBattlesEndedTotal,
		},
		[]string{LabelZone, LabelResult},
	)

	PlayersInBattle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNamePlayersInBattle,
			Help: HelpTextPlayersInBattle,
		},
	)
)

// World metrics
var (
	PlayersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNamePlayersOnline,
			Help: HelpTextPlayersOnline,
		},
	)

	WeatherChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameWeatherChangesTotal,
			Help: HelpTextWeatherChangesTotal,
		},
		[]string{LabelWeather},
	)
)

// HitLabel maps a roll outcome to a result label.
func HitLabel(hit bool) string {
	if hit {
		return ResultHit
	}
	return ResultMiss
}

// BattleResultLabel maps a battle outcome to a result label.
func BattleResultLabel(victory bool) string {
	if victory {
		return ResultVictory
	}
	return ResultDefeat
}
