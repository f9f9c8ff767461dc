// Package portmap holds the default UDP port assignments for each ADK
// service, keyed by timeslot where the service is timeslot-specific.
package portmap

// Service identifies one of the UDP services a repeater speaks.
type Service string

const (
	RCPTimeslot1 Service = "rcp-ts1"
	RCPTimeslot2 Service = "rcp-ts2"
	RTPTimeslot1 Service = "rtp-ts1"
	RTPTimeslot2 Service = "rtp-ts2"
	TMP1         Service = "tmp1"
	RRS1         Service = "rrs1"
	LP1          Service = "lp1"
	TP1          Service = "tp1"
	SDM1         Service = "sdm1"
	RCPAnalog    Service = "rcp-analog"
	RTPAnalog    Service = "rtp-analog"
	E2E1         Service = "e2e1"
	E2E2         Service = "e2e2"
)

// Default is the factory-default UDP port for each service, per the
// repeater's programming template.
var Default = map[Service]int{
	RCPTimeslot1: 30009,
	RCPTimeslot2: 30010,
	RTPTimeslot1: 30012,
	RTPTimeslot2: 30014,
	TMP1:         30007,
	RRS1:         30001,
	LP1:          30003,
	TP1:          30005,
	SDM1:         3017,
	RCPAnalog:    30015,
	RTPAnalog:    30016,
	E2E1:         30017,
	E2E2:         30018,
}

// All returns the full set of known services, in a stable order.
func All() []Service {
	return []Service{
		RRS1, LP1, TP1, TMP1,
		RCPTimeslot1, RCPTimeslot2,
		RTPTimeslot1, RTPTimeslot2,
		SDM1, RCPAnalog, RTPAnalog, E2E1, E2E2,
	}
}
