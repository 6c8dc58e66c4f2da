package metrics

// Metric names
const (
	MetricNameStepsTotal          = "wildstep_steps_total"
	MetricNameZoneChecksTotal     = "wildstep_zone_checks_total"
	MetricNameEncountersTotal     = "wildstep_encounters_total"
	MetricNameEncountersAborted   = "wildstep_encounters_aborted_total"
	MetricNameBattlesEndedTotal   = "wildstep_battles_ended_total"
	MetricNamePlayersInBattle     = "wildstep_players_in_battle"
	MetricNamePlayersOnline       = "wildstep_players_online"
	MetricNameWeatherChangesTotal = "wildstep_weather_changes_total"
)

// Help texts
const (
	HelpTextStepsTotal          = "Player steps counted inside encounter zones"
	HelpTextZoneChecksTotal     = "Encounter checks by zone and outcome of the zone roll"
	HelpTextEncountersTotal     = "Encounters that started a battle transition"
	HelpTextEncountersAborted   = "Triggered encounters aborted before a battle started"
	HelpTextBattlesEndedTotal   = "Battles that returned to the overworld"
	HelpTextPlayersInBattle     = "Players currently transitioning or in battle"
	HelpTextPlayersOnline       = "Connected players"
	HelpTextWeatherChangesTotal = "Weather transitions"
)

// Label names
const (
	LabelZone    = "zone"
	LabelResult  = "result"
	LabelWeather = "weather"
)

// Label values
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultVictory = "victory"
	ResultDefeat  = "defeat"
)
