package config

import "time"

type ProximityConfig interface {
	GetCheckInterval() time.Duration
	GetAlertRadiusMeters() float64
	GetSearchRadiusMeters() float64
	GetPositionTimeout() time.Duration
	GetCandidateLimit() int
	GetMaxNotificationsPerTick() int
}

type Proximity struct{}

var _ ProximityConfig = Proximity{}

func (Proximity) GetCheckInterval() time.Duration {
	return GetDuration("PROXIMITY_INTERVAL", 5*time.Minute)
}

func (Proximity) GetAlertRadiusMeters() float64 {
	return GetFloat("PROXIMITY_ALERT_RADIUS_M", 1000)
}

// GetSearchRadiusMeters defaults to twice the alert radius
func (p Proximity) GetSearchRadiusMeters() float64 {
	return GetFloat("PROXIMITY_SEARCH_RADIUS_M", 2*p.GetAlertRadiusMeters())
}

func (Proximity) GetPositionTimeout() time.Duration {
	return GetDuration("POSITION_TIMEOUT", 10*time.Second)
}

func (Proximity) GetCandidateLimit() int {
	return GetInt("PROXIMITY_CANDIDATE_LIMIT", 20)
}

// GetMaxNotificationsPerTick returns 0 (no cap) unless configured
func (Proximity) GetMaxNotificationsPerTick() int {
	return GetInt("PROXIMITY_MAX_PER_TICK", 0)
}
